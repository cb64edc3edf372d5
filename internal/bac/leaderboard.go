package bac

import "sort"

// LeaderboardRow is one ranked drinker.
type LeaderboardRow struct {
	Rank                int     `json:"rank"`
	UserID              string  `json:"user_id"`
	UserName            string  `json:"user_name"`
	Liters              float64 `json:"liters"`
	PercentOfGroupTotal float64 `json:"percent_of_group_total"`
}

// Rank orders users by total liters, highest first. Ties keep roster order.
// The percentage is zero when the group drank nothing.
func Rank(users []User, total func(userID string) float64) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(users))
	groupTotal := 0.0
	for _, u := range users {
		liters := total(u.ID)
		groupTotal += liters
		rows = append(rows, LeaderboardRow{UserID: u.ID, UserName: u.Name, Liters: liters})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Liters > rows[j].Liters
	})
	for i := range rows {
		rows[i].Rank = i + 1
		if groupTotal > 0 {
			rows[i].PercentOfGroupTotal = rows[i].Liters / groupTotal * 100
		}
	}
	return rows
}

// RankEvents ranks the roster by the liters found in events.
func RankEvents(users []User, events []DrinkEvent) []LeaderboardRow {
	totals := make(map[string]float64, len(users))
	for _, e := range events {
		totals[e.UserID] += e.VolumeMilliliters
	}
	return Rank(users, func(id string) float64 { return totals[id] / 1000 })
}
