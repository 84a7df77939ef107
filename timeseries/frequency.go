package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// Unit is the calendar unit of a Frequency. The zero Unit is unset.
type Unit int

const (
	Daily Unit = iota + 1
	Weekly
	Monthly
)

// Frequency describes how observations are grouped into periods. Periods
// are labelled by their start instant in UTC. The zero Frequency behaves as
// DefaultFrequency.
type Frequency struct {
	Unit Unit
	// Anchor is the weekday on which weekly periods start.
	Anchor time.Weekday
}

// DefaultFrequency is weekly, starting on Monday.
var DefaultFrequency = Frequency{Unit: Weekly, Anchor: time.Monday}

var weekdayAliases = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// ParseFrequency accepts "D", "W" (Monday), "W-MON" .. "W-SUN", "MS" and "M".
func ParseFrequency(alias string) (Frequency, error) {
	a := strings.ToUpper(strings.TrimSpace(alias))
	switch {
	case a == "" || a == "W":
		return DefaultFrequency, nil
	case a == "D":
		return Frequency{Unit: Daily}, nil
	case a == "MS" || a == "M":
		return Frequency{Unit: Monthly}, nil
	case strings.HasPrefix(a, "W-"):
		day, ok := weekdayAliases[strings.TrimPrefix(a, "W-")]
		if !ok {
			return Frequency{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, alias)
		}
		return Frequency{Unit: Weekly, Anchor: day}, nil
	}
	return Frequency{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, alias)
}

// IsZero reports whether f is unset.
func (f Frequency) IsZero() bool {
	return f.Unit == 0
}

func (f Frequency) resolve() Frequency {
	if f.IsZero() {
		return DefaultFrequency
	}
	return f
}

// String returns the alias understood by ParseFrequency.
func (f Frequency) String() string {
	f = f.resolve()
	switch f.Unit {
	case Daily:
		return "D"
	case Monthly:
		return "MS"
	}
	for alias, day := range weekdayAliases {
		if day == f.Anchor {
			return "W-" + alias
		}
	}
	return "W"
}

// MarshalText lets a Frequency appear as its alias in JSON reports.
func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText parses an alias.
func (f *Frequency) UnmarshalText(text []byte) error {
	parsed, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Truncate returns the start of the period containing t.
func (f Frequency) Truncate(t time.Time) time.Time {
	f = f.resolve()
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch f.Unit {
	case Daily:
		return day
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	back := (int(day.Weekday()) - int(f.Anchor) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// Next returns the start of the period following the one containing t.
func (f Frequency) Next(t time.Time) time.Time {
	return f.Add(t, 1)
}

// Add moves n periods forward from the period containing t.
func (f Frequency) Add(t time.Time, n int) time.Time {
	f = f.resolve()
	start := f.Truncate(t)
	switch f.Unit {
	case Daily:
		return start.AddDate(0, 0, n)
	case Monthly:
		return start.AddDate(0, n, 0)
	}
	return start.AddDate(0, 0, 7*n)
}

// Periods returns every period start from the period containing from up to
// and including the period containing to.
func (f Frequency) Periods(from, to time.Time) []time.Time {
	start, end := f.Truncate(from), f.Truncate(to)
	var out []time.Time
	for p := start; !p.After(end); p = f.Next(p) {
		out = append(out, p)
	}
	return out
}
