package bac

import (
	"sort"
	"time"
)

// JoinMode selects how per-user series are merged into comparison rows.
type JoinMode string

const (
	// JoinByTimestamp merges samples that share the exact millisecond.
	JoinByTimestamp JoinMode = "timestamp"
	// JoinByLabel merges samples that share the "15:04" display label. Distinct
	// instants that format identically (for example the same clock time on two
	// days of a 24h window) collapse into one row, the later value winning.
	JoinByLabel JoinMode = "label"
)

const labelLayout = "15:04"

// UserSeries is one drinker's sampled curve.
type UserSeries struct {
	UserID   string
	UserName string
	Series   []Sample
}

// ComparisonRow is one x-axis point of a multi-user chart. Values are keyed
// by user id.
type ComparisonRow struct {
	Label           string             `json:"time"`
	TimestampMillis int64              `json:"timestamp"`
	Values          map[string]float64 `json:"values"`
}

type CompareOptions struct {
	JoinBy   JoinMode
	Location *time.Location
}

// Compare merges independent per-user series into rows ordered by timestamp.
// Users are visited in slice order, so on a label collision the row keeps the
// timestamp of the first sample that produced it.
func Compare(users []UserSeries, opts CompareOptions) ([]ComparisonRow, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	join := opts.JoinBy
	if join == "" {
		join = JoinByTimestamp
	}
	if join != JoinByTimestamp && join != JoinByLabel {
		return nil, invalid("join", "unknown join mode %q", join)
	}

	rows := make([]*ComparisonRow, 0)
	byTS := make(map[int64]*ComparisonRow)
	byLabel := make(map[string]*ComparisonRow)

	for _, u := range users {
		for _, s := range u.Series {
			at := s.At
			if at.IsZero() {
				at = time.UnixMilli(s.TimestampMillis)
			}
			label := at.In(loc).Format(labelLayout)

			var row *ComparisonRow
			var ok bool
			if join == JoinByLabel {
				row, ok = byLabel[label]
			} else {
				row, ok = byTS[s.TimestampMillis]
			}
			if !ok {
				row = &ComparisonRow{Label: label, TimestampMillis: s.TimestampMillis, Values: make(map[string]float64)}
				rows = append(rows, row)
				if join == JoinByLabel {
					byLabel[label] = row
				} else {
					byTS[s.TimestampMillis] = row
				}
			}
			row.Values[u.UserID] = s.BAC
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TimestampMillis < rows[j].TimestampMillis
	})
	out := make([]ComparisonRow, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out, nil
}
