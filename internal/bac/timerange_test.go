package bac

import (
	"errors"
	"testing"
	"time"
)

func TestRangeSetResolve(t *testing.T) {
	p := DefaultPresets()
	r, err := p.BACRanges.Resolve("")
	if err != nil || r.Name != "12h" {
		t.Fatalf("default bac range: got=%+v err=%v", r, err)
	}
	start, end := r.Window(t0)
	if end.Sub(start) != 12*time.Hour {
		t.Fatalf("12h window: got=%v", end.Sub(start))
	}
	all, err := p.ConsumptionRanges.Resolve("ALL")
	if err != nil {
		t.Fatalf("resolve all: %v", err)
	}
	if s, _ := all.Window(t0); s.Year() != t0.Year()-10 {
		t.Fatalf("all: want 10 years back got=%v", s)
	}
	if _, err := p.ConsumptionRanges.Resolve("fortnight"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown range: want ErrValidation got=%v", err)
	}
}

func TestCalendarDaysInclusive(t *testing.T) {
	days := CalendarDays(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC), time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC), nil)
	if len(days) != 3 || days[2].Day() != 3 {
		t.Fatalf("days: got=%v", days)
	}
}

func TestParseWindow(t *testing.T) {
	s, e, err := ParseWindow("2026-03-01T10:00:00+02:00", "2026-03-01T12:00:00Z")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	if s.Location() != time.UTC || e.Sub(s) != 4*time.Hour {
		t.Fatalf("window: %v %v", s, e)
	}
	if _, _, err := ParseWindow("2026-03-02T00:00:00Z", "2026-03-01T00:00:00Z"); !errors.Is(err, ErrValidation) {
		t.Fatalf("inverted: want ErrValidation got=%v", err)
	}
	if _, _, err := ParseWindow("yesterday", "2026-03-01T00:00:00Z"); !errors.Is(err, ErrValidation) {
		t.Fatalf("garbage: want ErrValidation got=%v", err)
	}
}
