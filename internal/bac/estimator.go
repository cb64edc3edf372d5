package bac

import (
	"sort"
	"time"
)

const (
	// DefaultIntervalMinutes is the reference sampling interval.
	DefaultIntervalMinutes = 15
	// MaxIntervalMinutes is one week.
	MaxIntervalMinutes = 7 * 24 * 60
	// MaxSamples bounds the length of one series.
	MaxSamples = 20000
)

// Query selects the sampled window for Estimate.
type Query struct {
	WindowStart     time.Time
	WindowEnd       time.Time
	IntervalMinutes int
	Physiology      Physiology
	// Now anchors CurrentBAC and the zero-BAC projection. Zero means WindowEnd.
	Now time.Time
}

func (q Query) validate() error {
	if q.IntervalMinutes <= 0 {
		return invalid("interval_minutes", "must be positive, got %d", q.IntervalMinutes)
	}
	if q.IntervalMinutes > MaxIntervalMinutes {
		return invalid("interval_minutes", "must be at most %d, got %d", MaxIntervalMinutes, q.IntervalMinutes)
	}
	if q.WindowStart.IsZero() || q.WindowEnd.IsZero() {
		return invalid("window", "start and end are required")
	}
	if q.WindowStart.After(q.WindowEnd) {
		return invalid("window", "start %s is after end %s", q.WindowStart.Format(time.RFC3339), q.WindowEnd.Format(time.RFC3339))
	}
	if n := q.steps() + 1; n > MaxSamples {
		return invalid("window", "%d samples exceed the limit of %d, widen the interval or narrow the window", n, MaxSamples)
	}
	return q.Physiology.Validate()
}

// steps is floor(window/interval). Sub saturates, so absurd windows stay
// large instead of wrapping.
func (q Query) steps() int64 {
	interval := time.Duration(q.IntervalMinutes) * time.Minute
	return int64(q.WindowEnd.Sub(q.WindowStart) / interval)
}

func (q Query) now() time.Time {
	if q.Now.IsZero() {
		return q.WindowEnd
	}
	return q.Now
}

// Sample is one point of a BAC curve. BAC is rounded to two decimals; Exact
// keeps full precision for further computation.
type Sample struct {
	At              time.Time `json:"-"`
	TimestampMillis int64     `json:"timestamp"`
	BAC             float64   `json:"bac"`
	Exact           float64   `json:"-"`
}

// Result is the output of Estimate. ZeroBACAt is nil when the drinker is
// already at zero.
type Result struct {
	Series     []Sample   `json:"series"`
	CurrentBAC float64    `json:"current_bac"`
	ZeroBACAt  *time.Time `json:"zero_bac_at"`
}

// Estimate turns one user's drinks into a sampled BAC curve using the
// Widmark formula with linear elimination.
//
// Drinks after WindowEnd are ignored. Drinks before WindowStart still carry
// residual alcohol into the window. Samples are taken at WindowStart + k*interval
// for k = 0..floor(window/interval), so the last sample may land before
// WindowEnd when the window is not interval-aligned.
func Estimate(events []DrinkEvent, q Query) (Result, error) {
	if err := q.validate(); err != nil {
		return Result{}, err
	}
	if err := validateEvents(events); err != nil {
		return Result{}, err
	}

	drinks := relevantDrinks(events, q.WindowEnd)
	if len(drinks) == 0 {
		return Result{Series: []Sample{}}, nil
	}

	interval := time.Duration(q.IntervalMinutes) * time.Minute
	steps := int(q.steps())
	series := make([]Sample, 0, steps+1)
	for k := 0; k <= steps; k++ {
		t := q.WindowStart.Add(time.Duration(k) * interval)
		exact := bacAt(drinks, t, q.Physiology)
		series = append(series, Sample{
			At:              t,
			TimestampMillis: t.UnixMilli(),
			BAC:             round2(exact),
			Exact:           exact,
		})
	}

	now := q.now()
	current := currentSample(series, now)
	res := Result{Series: series, CurrentBAC: current}
	res.ZeroBACAt = ZeroBACAt(current, now, q.Physiology)
	return res, nil
}

// ZeroBACAt projects when the given BAC reaches zero by applying the
// elimination rate to the whole current total. Returns nil when bac <= 0.
func ZeroBACAt(bac float64, now time.Time, p Physiology) *time.Time {
	if bac <= 0 || p.EliminationRatePermillePerHour <= 0 {
		return nil
	}
	hours := bac / p.EliminationRatePermillePerHour
	at := now.Add(time.Duration(hours * float64(time.Hour)))
	return &at
}

// relevantDrinks returns drinks at or before end, sorted by time. Equal
// timestamps keep their input order.
func relevantDrinks(events []DrinkEvent, end time.Time) []DrinkEvent {
	out := make([]DrinkEvent, 0, len(events))
	for _, e := range events {
		if e.OccurredAt.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out
}

// bacAt sums every drink consumed at or before t. drinks must be sorted.
func bacAt(drinks []DrinkEvent, t time.Time, p Physiology) float64 {
	total := 0.0
	for _, d := range drinks {
		if d.OccurredAt.After(t) {
			break
		}
		minutes := t.Sub(d.OccurredAt).Minutes()
		total += p.Contribution(d.AlcoholGrams(), minutes)
	}
	return total
}

// currentSample is the rounded BAC of the last sample at or before now. When
// now precedes the whole series there is no observation yet and it is zero.
func currentSample(series []Sample, now time.Time) float64 {
	idx := sort.Search(len(series), func(i int) bool { return series[i].At.After(now) })
	if idx == 0 {
		return 0
	}
	return series[idx-1].BAC
}

// EstimateByUser runs Estimate independently for each user present in events.
// There is no interaction between drinkers.
func EstimateByUser(events []DrinkEvent, q Query, physiology map[string]Physiology) (map[string]Result, error) {
	grouped := make(map[string][]DrinkEvent)
	for _, e := range events {
		grouped[e.UserID] = append(grouped[e.UserID], e)
	}
	out := make(map[string]Result, len(grouped))
	for userID, userEvents := range grouped {
		uq := q
		if p, ok := physiology[userID]; ok {
			uq.Physiology = p
		}
		res, err := Estimate(userEvents, uq)
		if err != nil {
			return nil, err
		}
		out[userID] = res
	}
	return out, nil
}
