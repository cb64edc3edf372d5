package bac

import (
	"errors"
	"testing"
	"time"
)

func series(start time.Time, step time.Duration, values ...float64) []Sample {
	out := make([]Sample, len(values))
	for i, v := range values {
		at := start.Add(time.Duration(i) * step)
		out[i] = Sample{At: at, TimestampMillis: at.UnixMilli(), BAC: v, Exact: v}
	}
	return out
}

func TestCompareByTimestampMergesUsers(t *testing.T) {
	users := []UserSeries{
		{UserID: "a", Series: series(t0, 15*time.Minute, 1, 0.9)},
		{UserID: "b", Series: series(t0.Add(15*time.Minute), 15*time.Minute, 2, 1.8)},
	}
	rows, err := Compare(users, CompareOptions{})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: want=3 got=%d", len(rows))
	}
	if rows[1].Values["a"] != 0.9 || rows[1].Values["b"] != 2 {
		t.Fatalf("merged row: got=%v", rows[1].Values)
	}
	if _, ok := rows[0].Values["b"]; ok {
		t.Fatalf("user b should be absent from first row")
	}
	if rows[0].Label != "18:00" {
		t.Fatalf("label: want=18:00 got=%s", rows[0].Label)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].TimestampMillis < rows[i-1].TimestampMillis {
			t.Fatalf("rows not ordered")
		}
	}
}

func TestCompareByLabelCollapsesSameClockTime(t *testing.T) {
	users := []UserSeries{
		{UserID: "a", Series: series(t0, 24*time.Hour, 1, 2)},
	}
	byTS, _ := Compare(users, CompareOptions{JoinBy: JoinByTimestamp})
	byLabel, _ := Compare(users, CompareOptions{JoinBy: JoinByLabel})
	if len(byTS) != 2 {
		t.Fatalf("timestamp join: want=2 rows got=%d", len(byTS))
	}
	if len(byLabel) != 1 {
		t.Fatalf("label join: want=1 row got=%d", len(byLabel))
	}
	if byLabel[0].Values["a"] != 2 || byLabel[0].TimestampMillis != t0.UnixMilli() {
		t.Fatalf("label join row: got=%+v", byLabel[0])
	}
}

func TestCompareRejectsUnknownJoin(t *testing.T) {
	if _, err := Compare(nil, CompareOptions{JoinBy: "nope"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation got=%v", err)
	}
}
