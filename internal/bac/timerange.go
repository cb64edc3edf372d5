package bac

import (
	"strings"
	"time"
)

// RangePreset is a named look-back window ending at now.
type RangePreset struct {
	Name  string `yaml:"name" json:"name"`
	Hours int    `yaml:"hours" json:"hours,omitempty"`
	Days  int    `yaml:"days" json:"days,omitempty"`
	Years int    `yaml:"years" json:"years,omitempty"`
}

// Window returns [start, now]. Days and years step by calendar, hours by
// elapsed time.
func (r RangePreset) Window(now time.Time) (time.Time, time.Time) {
	start := now.AddDate(-r.Years, 0, -r.Days).Add(-time.Duration(r.Hours) * time.Hour)
	return start, now
}

// RangeSet is an ordered list of presets with a default.
type RangeSet struct {
	Default string        `yaml:"default" json:"default"`
	Ranges  []RangePreset `yaml:"ranges" json:"ranges"`
}

// Resolve finds a preset by name; an empty name selects the default.
func (s RangeSet) Resolve(name string) (RangePreset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = s.Default
	}
	for _, r := range s.Ranges {
		if r.Name == name {
			return r, nil
		}
	}
	return RangePreset{}, invalid("range", "unknown range %q", name)
}

func (s RangeSet) Names() []string {
	out := make([]string, 0, len(s.Ranges))
	for _, r := range s.Ranges {
		out = append(out, r.Name)
	}
	return out
}

// CalendarDays lists midnight of every local day touched by [start, end].
func CalendarDays(start, end time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	s := start.In(loc)
	e := end.In(loc)
	cur := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	last := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc)
	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 0, 1)
	}
	return out
}

// ParseWindow reads RFC 3339 bounds.
func ParseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(startRaw))
	if err != nil {
		return time.Time{}, time.Time{}, invalid("start", "%v", err)
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(endRaw))
	if err != nil {
		return time.Time{}, time.Time{}, invalid("end", "%v", err)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, invalid("window", "start %s is after end %s", startRaw, endRaw)
	}
	return start.UTC(), end.UTC(), nil
}
