package timeseries

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is a regular time series: one value per period, labelled by the
// period start. Undefined periods hold NaN until ForwardFill/DropUndefined
// are applied.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a series from values without meaningful timestamps.
// Period i is labelled with the zero time plus i days, which is enough for
// purely positional work such as tests and differencing.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = time.Time{}.AddDate(0, 0, i)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a series with explicit period labels.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, ErrLengthMismatch
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, fmt.Errorf("%w: index %d (%s after %s)", ErrUnordered, i,
				timestamps[i].Format(time.RFC3339), timestamps[i-1].Format(time.RFC3339))
		}
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the number of periods.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean returns the arithmetic mean of the values.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Std returns the sample standard deviation of the values.
func (s *Series) Std() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.StdDev(s.Values, nil)
}

// Min returns the smallest value, or NaN for an empty series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the largest value, or NaN for an empty series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// Start returns the first period label.
func (s *Series) Start() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[0]
}

// End returns the last period label.
func (s *Series) End() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[len(s.Timestamps)-1]
}

// Diff returns the first difference, value[t] - value[t-1]. The first
// period has no predecessor and is dropped.
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN applies first differencing n times.
func (s *Series) DiffN(n int) *Series {
	out := s.Copy()
	for i := 0; i < n; i++ {
		if out.Len() <= 1 {
			return &Series{Name: out.Name + "_diff"}
		}
		values := make([]float64, out.Len()-1)
		for t := 1; t < out.Len(); t++ {
			values[t-1] = out.Values[t] - out.Values[t-1]
		}
		out = &Series{
			Timestamps: append([]time.Time(nil), out.Timestamps[1:]...),
			Values:     values,
			Name:       out.Name + "_diff",
		}
	}
	return out
}

// Slice returns periods [start, end).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Name: s.Name}
	}

	return &Series{
		Timestamps: append([]time.Time(nil), s.Timestamps[start:end]...),
		Values:     append([]float64(nil), s.Values[start:end]...),
		Name:       s.Name,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	return &Series{
		Timestamps: append([]time.Time(nil), s.Timestamps...),
		Values:     append([]float64(nil), s.Values...),
		Name:       s.Name,
	}
}

// Undefined reports how many periods hold NaN.
func (s *Series) Undefined() int {
	n := 0
	for _, v := range s.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// ForwardFill replaces each undefined period with the last defined value
// before it. Periods before the first defined value stay undefined.
func (s *Series) ForwardFill() *Series {
	out := s.Copy()
	last := math.NaN()
	for i, v := range out.Values {
		if math.IsNaN(v) {
			out.Values[i] = last
			continue
		}
		last = v
	}
	return out
}

// DropUndefined removes every undefined period.
func (s *Series) DropUndefined() *Series {
	out := &Series{Name: s.Name}
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		out.Timestamps = append(out.Timestamps, s.Timestamps[i])
		out.Values = append(out.Values, v)
	}
	return out
}

// Align keeps only the periods present and defined in both series,
// preserving order. Both inputs must be ordered.
func Align(a, b *Series) (*Series, *Series) {
	outA := &Series{Name: a.Name}
	outB := &Series{Name: b.Name}

	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		ta, tb := a.Timestamps[i], b.Timestamps[j]
		switch {
		case ta.Before(tb):
			i++
		case tb.Before(ta):
			j++
		default:
			if !math.IsNaN(a.Values[i]) && !math.IsNaN(b.Values[j]) {
				outA.Timestamps = append(outA.Timestamps, ta)
				outA.Values = append(outA.Values, a.Values[i])
				outB.Timestamps = append(outB.Timestamps, tb)
				outB.Values = append(outB.Values, b.Values[j])
			}
			i++
			j++
		}
	}
	return outA, outB
}
