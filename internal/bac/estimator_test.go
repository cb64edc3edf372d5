package bac

import (
	"errors"
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func drink(user string, ml, abv float64, at time.Time) DrinkEvent {
	return DrinkEvent{UserID: user, VolumeMilliliters: ml, AlcoholPercentage: abv, OccurredAt: at}
}

func query(start, end time.Time) Query {
	return Query{WindowStart: start, WindowEnd: end, IntervalMinutes: 15, Physiology: DefaultPhysiology()}
}

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestEstimateNoEventsReturnsEmptySeries(t *testing.T) {
	res, err := Estimate(nil, query(t0, t0.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.Series == nil || len(res.Series) != 0 {
		t.Fatalf("series: want empty non-nil got=%v", res.Series)
	}
	if res.CurrentBAC != 0 || res.ZeroBACAt != nil {
		t.Fatalf("want current=0 zero=nil got=%v %v", res.CurrentBAC, res.ZeroBACAt)
	}
}

func TestEstimateDrinksAfterWindowAreIgnored(t *testing.T) {
	events := []DrinkEvent{drink("u1", 500, 5, t0.Add(3*time.Hour))}
	res, err := Estimate(events, query(t0, t0.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if len(res.Series) != 0 {
		t.Fatalf("want empty series got=%d samples", len(res.Series))
	}
}

func TestEstimateSingleDrinkPeak(t *testing.T) {
	events := []DrinkEvent{drink("u1", 500, 5, t0)}
	res, err := Estimate(events, query(t0, t0.Add(time.Hour)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if len(res.Series) != 5 {
		t.Fatalf("samples: want=5 got=%d", len(res.Series))
	}
	if res.Series[0].BAC != 0.39 {
		t.Fatalf("peak: want=0.39 got=%v", res.Series[0].BAC)
	}
	if res.Series[4].BAC != 0.24 {
		t.Fatalf("after 1h: want=0.24 got=%v", res.Series[4].BAC)
	}
	if res.CurrentBAC != 0.24 {
		t.Fatalf("current: want=0.24 got=%v", res.CurrentBAC)
	}
	if res.ZeroBACAt == nil {
		t.Fatalf("zero-bac time: want set")
	}
	wantZero := t0.Add(time.Hour).Add(time.Duration(0.24 / 0.15 * float64(time.Hour)))
	if d := res.ZeroBACAt.Sub(wantZero); d > time.Second || d < -time.Second {
		t.Fatalf("zero-bac: want=%v got=%v", wantZero, *res.ZeroBACAt)
	}
}

func TestEstimateSecondDrinkAddsOnlyFromItsTime(t *testing.T) {
	events := []DrinkEvent{
		drink("u1", 330, 6, t0.Add(60*time.Minute)),
		drink("u1", 500, 5, t0),
	}
	q := Query{WindowStart: t0, WindowEnd: t0.Add(61 * time.Minute), IntervalMinutes: 1, Physiology: DefaultPhysiology()}
	res, err := Estimate(events, q)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if got := res.Series[59].Exact; !approx(got, 0.39216-59.0/60*0.15, 1e-3) {
		t.Fatalf("T+59: got=%v", got)
	}
	// At T+60 the second drink contributes its full peak.
	want60 := (2.0/51*10 - 0.15) + 1.584/51*10
	if got := res.Series[60].Exact; !approx(got, want60, 1e-9) {
		t.Fatalf("T+60: want=%v got=%v", want60, got)
	}
	if res.Series[61].Exact >= res.Series[60].Exact {
		t.Fatalf("T+61 should decline: %v >= %v", res.Series[61].Exact, res.Series[60].Exact)
	}
}

func TestEstimateDecreasesBetweenDrinks(t *testing.T) {
	events := []DrinkEvent{drink("u1", 500, 5, t0), drink("u1", 500, 5, t0.Add(3*time.Hour))}
	res, err := Estimate(events, query(t0, t0.Add(6*time.Hour)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	for _, s := range res.Series {
		if s.Exact < 0 {
			t.Fatalf("negative bac at %v", s.At)
		}
	}
	for i := 1; i < len(res.Series); i++ {
		if res.Series[i].At.Equal(t0.Add(3 * time.Hour)) {
			continue
		}
		if res.Series[i].Exact > res.Series[i-1].Exact {
			t.Fatalf("bac rose at %v without a drink", res.Series[i].At)
		}
	}
}

func TestEstimateResidualFromBeforeWindow(t *testing.T) {
	events := []DrinkEvent{drink("u1", 500, 5, t0.Add(-time.Hour))}
	res, err := Estimate(events, query(t0, t0.Add(30*time.Minute)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.Series[0].BAC != 0.24 {
		t.Fatalf("residual: want=0.24 got=%v", res.Series[0].BAC)
	}
}

func TestEstimateNonAlignedWindow(t *testing.T) {
	events := []DrinkEvent{drink("u1", 500, 5, t0)}
	res, err := Estimate(events, query(t0, t0.Add(40*time.Minute)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if len(res.Series) != 3 {
		t.Fatalf("samples: want=3 got=%d", len(res.Series))
	}
	if last := res.Series[2].At; !last.Equal(t0.Add(30 * time.Minute)) {
		t.Fatalf("last sample: want T+30 got=%v", last)
	}
}

func TestEstimateFullyEliminatedIsZero(t *testing.T) {
	events := []DrinkEvent{drink("u1", 330, 5, t0)}
	res, err := Estimate(events, query(t0, t0.Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.CurrentBAC != 0 || res.ZeroBACAt != nil {
		t.Fatalf("want sober got current=%v zero=%v", res.CurrentBAC, res.ZeroBACAt)
	}
}

func TestEstimateMissingABVUsesDefault(t *testing.T) {
	withDefault, _ := Estimate([]DrinkEvent{drink("u1", 500, 0, t0)}, query(t0, t0))
	explicit, _ := Estimate([]DrinkEvent{drink("u1", 500, 5, t0)}, query(t0, t0))
	if withDefault.Series[0].Exact != explicit.Series[0].Exact {
		t.Fatalf("default abv: %v != %v", withDefault.Series[0].Exact, explicit.Series[0].Exact)
	}
}

func TestEstimateRejectsInvalidInput(t *testing.T) {
	cases := map[string]struct {
		events []DrinkEvent
		q      Query
	}{
		"zero interval":   {nil, Query{WindowStart: t0, WindowEnd: t0.Add(time.Hour), Physiology: DefaultPhysiology()}},
		"inverted window": {nil, query(t0.Add(time.Hour), t0)},
		"zero weight":     {nil, Query{WindowStart: t0, WindowEnd: t0, IntervalMinutes: 15, Physiology: Physiology{DistributionFactor: 0.6, EliminationRatePermillePerHour: 0.15}}},
		"negative volume": {[]DrinkEvent{drink("u1", -1, 5, t0)}, query(t0, t0.Add(time.Hour))},
		"abv over 100":    {[]DrinkEvent{drink("u1", 500, 120, t0)}, query(t0, t0.Add(time.Hour))},
	}
	for name, tc := range cases {
		_, err := Estimate(tc.events, tc.q)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: want ErrValidation got=%v", name, err)
		}
	}
}

func TestEstimateSampleLimit(t *testing.T) {
	events := []DrinkEvent{drink("u1", 500, 5, t0)}
	q := Query{WindowStart: t0, WindowEnd: t0.Add(time.Duration(MaxSamples-1) * time.Minute), IntervalMinutes: 1, Physiology: DefaultPhysiology()}
	res, err := Estimate(events, q)
	if err != nil {
		t.Fatalf("Estimate at limit: %v", err)
	}
	if len(res.Series) != MaxSamples {
		t.Fatalf("samples: want=%d got=%d", MaxSamples, len(res.Series))
	}

	q.WindowEnd = q.WindowEnd.Add(time.Minute)
	if _, err := Estimate(events, q); !errors.Is(err, ErrValidation) {
		t.Fatalf("one past limit: want ErrValidation got=%v", err)
	}

	// 200000000 minutes overflows time.Duration and would wrap to a single sample.
	for _, minutes := range []int{MaxIntervalMinutes + 1, 200000000} {
		q := query(t0, t0.Add(time.Hour))
		q.IntervalMinutes = minutes
		if _, err := Estimate(events, q); !errors.Is(err, ErrValidation) {
			t.Fatalf("interval %d: want ErrValidation got=%v", minutes, err)
		}
	}

	decades := query(t0.AddDate(-34, 0, 0), t0)
	decades.IntervalMinutes = 1
	if _, err := Estimate(events, decades); !errors.Is(err, ErrValidation) {
		t.Fatalf("34 years at 1m: want ErrValidation got=%v", err)
	}
}

func TestEstimateDoesNotMutateInput(t *testing.T) {
	events := []DrinkEvent{drink("u1", 500, 5, t0.Add(time.Hour)), drink("u1", 330, 5, t0)}
	if _, err := Estimate(events, query(t0, t0.Add(2*time.Hour))); err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !events[0].OccurredAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("input order changed")
	}
}

func TestCurrentBACBeforeSeries(t *testing.T) {
	q := query(t0, t0.Add(time.Hour))
	q.Now = t0.Add(-time.Minute)
	res, err := Estimate([]DrinkEvent{drink("u1", 500, 5, t0)}, q)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.CurrentBAC != 0 {
		t.Fatalf("current: want=0 got=%v", res.CurrentBAC)
	}
}

func TestEstimateByUserIsIndependent(t *testing.T) {
	events := []DrinkEvent{drink("a", 500, 5, t0), drink("b", 1000, 5, t0)}
	light := Physiology{BodyWeightKg: 50, DistributionFactor: 0.55, EliminationRatePermillePerHour: 0.15}
	out, err := EstimateByUser(events, query(t0, t0.Add(time.Hour)), map[string]Physiology{"b": light})
	if err != nil {
		t.Fatalf("EstimateByUser: %v", err)
	}
	solo, _ := Estimate(events[:1], query(t0, t0.Add(time.Hour)))
	if out["a"].CurrentBAC != solo.CurrentBAC {
		t.Fatalf("user a affected by user b: %v != %v", out["a"].CurrentBAC, solo.CurrentBAC)
	}
	if out["b"].Series[0].Exact <= out["a"].Series[0].Exact {
		t.Fatalf("user b should peak higher")
	}
}

func TestZeroBACAt(t *testing.T) {
	if ZeroBACAt(0, t0, DefaultPhysiology()) != nil {
		t.Fatalf("want nil for zero bac")
	}
	got := ZeroBACAt(0.3, t0, DefaultPhysiology())
	if got == nil || !got.Equal(t0.Add(2*time.Hour)) {
		t.Fatalf("want T+2h got=%v", got)
	}
}
