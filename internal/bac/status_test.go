package bac

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		bac  float64
		want SobrietyStatus
	}{
		{0, StatusSober},
		{-1, StatusSober},
		{0.2, StatusLight},
		{0.5, StatusModerate},
		{0.99, StatusModerate},
		{1.0, StatusHigh},
		{3.5, StatusHigh},
	}
	for _, tc := range cases {
		if got := Classify(tc.bac, nil); got != tc.want {
			t.Fatalf("Classify(%v): want=%s got=%s", tc.bac, tc.want, got)
		}
	}
	if got := DefaultPresets().Status(0.7); got != StatusModerate {
		t.Fatalf("preset thresholds: got=%s", got)
	}
}
