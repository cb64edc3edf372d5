package bac

import "testing"

func TestRankEventsOrdersByLiters(t *testing.T) {
	users := []User{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	events := []DrinkEvent{drink("b", 1000, 5, t0), drink("c", 1000, 5, t0), drink("a", 500, 5, t0), drink("c", 500, 5, t0)}
	rows := RankEvents(users, events)
	if rows[0].UserID != "c" || rows[1].UserID != "b" || rows[2].UserID != "a" {
		t.Fatalf("order: got=%+v", rows)
	}
	if rows[0].Rank != 1 || rows[2].Rank != 3 {
		t.Fatalf("ranks: got=%+v", rows)
	}
	sum := 0.0
	for _, r := range rows {
		sum += r.PercentOfGroupTotal
	}
	if !approx(sum, 100, 1e-9) {
		t.Fatalf("percent sum: want=100 got=%v", sum)
	}
}

func TestRankTiesKeepRosterOrder(t *testing.T) {
	users := []User{{ID: "x"}, {ID: "y"}}
	rows := RankEvents(users, []DrinkEvent{drink("y", 500, 5, t0), drink("x", 500, 5, t0)})
	if rows[0].UserID != "x" || rows[1].UserID != "y" {
		t.Fatalf("tie order: got=%+v", rows)
	}
}

func TestRankZeroTotal(t *testing.T) {
	rows := RankEvents([]User{{ID: "x"}, {ID: "y"}}, nil)
	for _, r := range rows {
		if r.PercentOfGroupTotal != 0 || r.Liters != 0 {
			t.Fatalf("want zeros got=%+v", r)
		}
	}
}
