package bac

import (
	"errors"
	"testing"
	"time"
)

var roster = []User{{ID: "a", Name: "Ann"}, {ID: "b", Name: "Bo"}}

func TestDailyConsumptionIsDense(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6).Add(23 * time.Hour)
	events := []DrinkEvent{
		drink("a", 500, 5, start.Add(20*time.Hour)),
		drink("a", 330, 5, start.Add(21*time.Hour)),
		drink("b", 1000, 5, start.AddDate(0, 0, 3)),
		drink("b", 500, 5, start.AddDate(0, 0, -1)),
	}
	rows, err := DailyConsumption(events, roster, ConsumptionQuery{WindowStart: start, WindowEnd: end})
	if err != nil {
		t.Fatalf("DailyConsumption: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("days: want=7 got=%d", len(rows))
	}
	if rows[0].Date != "2026-03-01" || !approx(rows[0].PerUser["a"], 0.83, 1e-9) {
		t.Fatalf("day 0: got=%+v", rows[0])
	}
	if v, ok := rows[0].PerUser["b"]; !ok || v != 0 {
		t.Fatalf("day 0 user b: want explicit 0 got=%v ok=%v", v, ok)
	}
	if rows[3].PerUser["b"] != 1 {
		t.Fatalf("day 3 user b: want=1 got=%v", rows[3].PerUser["b"])
	}
	for _, r := range rows {
		if len(r.PerUser) != 2 {
			t.Fatalf("%s: want both users got=%v", r.Date, r.PerUser)
		}
	}
}

func TestDailyConsumptionRespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	end := time.Date(2026, 3, 2, 23, 0, 0, 0, loc)
	// 22:30 UTC on the 1st is the 2nd locally.
	events := []DrinkEvent{drink("a", 500, 5, time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC))}
	rows, err := DailyConsumption(events, roster, ConsumptionQuery{WindowStart: start, WindowEnd: end, Location: loc})
	if err != nil {
		t.Fatalf("DailyConsumption: %v", err)
	}
	if rows[0].PerUser["a"] != 0 || rows[1].PerUser["a"] != 0.5 {
		t.Fatalf("local bucketing: got=%+v", rows)
	}
}

func TestDailyConsumptionSingleUser(t *testing.T) {
	start := t0
	events := []DrinkEvent{drink("a", 500, 5, t0), drink("b", 500, 5, t0)}
	rows, err := DailyConsumption(events, roster, ConsumptionQuery{WindowStart: start, WindowEnd: start.Add(time.Hour), UserID: "b"})
	if err != nil {
		t.Fatalf("DailyConsumption: %v", err)
	}
	if len(rows[0].PerUser) != 1 || rows[0].PerUser["b"] != 0.5 {
		t.Fatalf("single user: got=%v", rows[0].PerUser)
	}
}

func TestCumulativeConsumption(t *testing.T) {
	events := []DrinkEvent{
		drink("b", 500, 5, t0.Add(time.Hour)),
		drink("a", 330, 5, t0),
		drink("a", 500, 5, t0.Add(2*time.Hour)),
	}
	rows, err := CumulativeConsumption(events, roster, "")
	if err != nil {
		t.Fatalf("CumulativeConsumption: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: want=3 got=%d", len(rows))
	}
	if rows[0].UserID != "a" || rows[0].PerUser["b"] != 0 {
		t.Fatalf("row 0: got=%+v", rows[0])
	}
	last := rows[2].PerUser
	if !approx(last["a"], 0.83, 1e-9) || last["b"] != 0.5 {
		t.Fatalf("final totals: got=%v", last)
	}
	for i := 1; i < len(rows); i++ {
		for id, v := range rows[i].PerUser {
			if v < rows[i-1].PerUser[id] {
				t.Fatalf("running total for %s decreased", id)
			}
		}
	}
}

func TestTotalConsumptionIsOrderIndependent(t *testing.T) {
	a := []DrinkEvent{drink("a", 330, 5, t0), drink("a", 500, 5, t0), drink("b", 1000, 5, t0)}
	b := []DrinkEvent{a[2], a[1], a[0]}
	if TotalConsumption(a, "") != TotalConsumption(b, "") {
		t.Fatalf("totals differ by order")
	}
	if got := TotalConsumption(a, "a"); !approx(got, 0.83, 1e-9) {
		t.Fatalf("user a total: want=0.83 got=%v", got)
	}
}

func TestDailyConsumptionWindowLimit(t *testing.T) {
	end := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	rows, err := DailyConsumption(nil, roster, ConsumptionQuery{WindowStart: end.AddDate(-10, 0, 0), WindowEnd: end})
	if err != nil {
		t.Fatalf("ten years: %v", err)
	}
	if len(rows) < 3650 || len(rows) > MaxConsumptionDays {
		t.Fatalf("ten years: got=%d rows", len(rows))
	}

	_, err = DailyConsumption(nil, roster, ConsumptionQuery{WindowStart: end.AddDate(-200, 0, 0), WindowEnd: end})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("two centuries: want ErrValidation got=%v", err)
	}
}
