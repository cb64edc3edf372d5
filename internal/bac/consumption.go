package bac

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// MaxConsumptionDays bounds the daily table. It covers the ten-year "all"
// range with room for leap days.
const MaxConsumptionDays = 3700

// DailyRow is one calendar day of liters per user id.
type DailyRow struct {
	Date    string             `json:"date"`
	PerUser map[string]float64 `json:"per_user"`
}

// CumulativeRow carries every tracked user's running total as of one drink.
type CumulativeRow struct {
	At              time.Time          `json:"-"`
	TimestampMillis int64              `json:"timestamp"`
	UserID          string             `json:"user_id"`
	PerUser         map[string]float64 `json:"per_user"`
}

// ConsumptionQuery scopes DailyConsumption. UserID empty means every user.
type ConsumptionQuery struct {
	WindowStart time.Time
	WindowEnd   time.Time
	UserID      string
	Location    *time.Location
}

// DailyConsumption buckets drinks in [WindowStart, WindowEnd] by calendar day
// in the query location. Every day of the window is present and every tracked
// user has a value on every row, zero when they drank nothing.
func DailyConsumption(events []DrinkEvent, roster []User, q ConsumptionQuery) ([]DailyRow, error) {
	if q.WindowStart.IsZero() || q.WindowEnd.IsZero() {
		return nil, invalid("window", "start and end are required")
	}
	if q.WindowStart.After(q.WindowEnd) {
		return nil, invalid("window", "start is after end")
	}
	if q.WindowEnd.Sub(q.WindowStart) > MaxConsumptionDays*24*time.Hour {
		return nil, invalid("window", "longer than %d days", MaxConsumptionDays)
	}
	if err := validateEvents(events); err != nil {
		return nil, err
	}
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}

	filtered := filterUser(events, q.UserID)
	tracked := trackedUsers(roster, filtered, q.UserID)

	days := CalendarDays(q.WindowStart, q.WindowEnd, loc)
	index := make(map[string]int, len(days))
	rows := make([]DailyRow, len(days))
	for i, d := range days {
		key := d.Format(dayLayout)
		index[key] = i
		per := make(map[string]float64, len(tracked))
		for _, id := range tracked {
			per[id] = 0
		}
		rows[i] = DailyRow{Date: key, PerUser: per}
	}

	for _, e := range filtered {
		if e.OccurredAt.Before(q.WindowStart) || e.OccurredAt.After(q.WindowEnd) {
			continue
		}
		i, ok := index[e.OccurredAt.In(loc).Format(dayLayout)]
		if !ok {
			continue
		}
		rows[i].PerUser[e.UserID] += e.Liters()
	}
	return rows, nil
}

// CumulativeConsumption emits one row per drink in time order. Equal
// timestamps keep input order so the curve is deterministic.
func CumulativeConsumption(events []DrinkEvent, roster []User, userID string) ([]CumulativeRow, error) {
	if err := validateEvents(events); err != nil {
		return nil, err
	}
	filtered := filterUser(events, userID)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].OccurredAt.Before(filtered[j].OccurredAt)
	})

	running := make(map[string]float64)
	for _, id := range trackedUsers(roster, filtered, userID) {
		running[id] = 0
	}
	rows := make([]CumulativeRow, 0, len(filtered))
	for _, e := range filtered {
		running[e.UserID] += e.Liters()
		snapshot := make(map[string]float64, len(running))
		for id, v := range running {
			snapshot[id] = v
		}
		rows = append(rows, CumulativeRow{
			At:              e.OccurredAt,
			TimestampMillis: e.OccurredAt.UnixMilli(),
			UserID:          e.UserID,
			PerUser:         snapshot,
		})
	}
	return rows, nil
}

// TotalConsumption is the liters drunk by userID, or by everyone when
// userID is empty.
func TotalConsumption(events []DrinkEvent, userID string) float64 {
	total := 0.0
	for _, e := range events {
		if userID != "" && e.UserID != userID {
			continue
		}
		total += e.VolumeMilliliters
	}
	return total / 1000
}

// filterUser copies events, keeping only userID when it is set.
func filterUser(events []DrinkEvent, userID string) []DrinkEvent {
	out := make([]DrinkEvent, 0, len(events))
	for _, e := range events {
		if userID != "" && e.UserID != userID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// trackedUsers is the roster (narrowed to userID) followed by any drinker
// missing from it, in first-seen order.
func trackedUsers(roster []User, events []DrinkEvent, userID string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(roster))
	for _, u := range roster {
		if userID != "" && u.ID != userID {
			continue
		}
		if !seen[u.ID] {
			seen[u.ID] = true
			out = append(out, u.ID)
		}
	}
	for _, e := range events {
		if !seen[e.UserID] {
			seen[e.UserID] = true
			out = append(out, e.UserID)
		}
	}
	if userID != "" && !seen[userID] {
		out = append(out, userID)
	}
	return out
}
