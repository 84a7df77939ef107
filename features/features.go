// Package features frames a time series as a supervised learning problem.
//
// Lagged builds a table whose row for period t holds the target y(t) and the
// explanatory values y(t-1) .. y(t-n). The first n periods have incomplete
// history and produce no row, so a table always has len(series)-n rows.
package features

import (
	"errors"
	"fmt"
	"time"

	"github.com/sartorproj/cestabasica/timeseries"
)

var (
	// ErrInvalidLags is returned for a lag count below one.
	ErrInvalidLags = errors.New("features: number of lags must be at least 1")

	// ErrInsufficientHistory is returned when the series is not longer than
	// the number of lags.
	ErrInsufficientHistory = errors.New("features: series too short for the requested lags")
)

// Table is a lagged feature table. Features[i][j] is the value j+1 periods
// before Timestamps[i].
type Table struct {
	Timestamps []time.Time
	Targets    []float64
	Features   [][]float64
	NLags      int
	Frequency  timeseries.Frequency
}

// Lagged builds the feature table for series with nLags lags.
func Lagged(series *timeseries.Series, nLags int, freq timeseries.Frequency) (*Table, error) {
	if nLags < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLags, nLags)
	}
	rows := series.Len() - nLags
	if rows <= 0 {
		return nil, fmt.Errorf("%w: %d periods, %d lags", ErrInsufficientHistory, series.Len(), nLags)
	}

	tbl := &Table{
		Timestamps: make([]time.Time, rows),
		Targets:    make([]float64, rows),
		Features:   make([][]float64, rows),
		NLags:      nLags,
		Frequency:  freq,
	}
	for r := 0; r < rows; r++ {
		t := r + nLags
		tbl.Timestamps[r] = series.Timestamps[t]
		tbl.Targets[r] = series.Values[t]
		row := make([]float64, nLags)
		for i := 1; i <= nLags; i++ {
			row[i-1] = series.Values[t-i]
		}
		tbl.Features[r] = row
	}
	return tbl, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Targets)
}

// Slice returns rows [start, end) sharing the underlying feature rows.
func (t *Table) Slice(start, end int) *Table {
	return &Table{
		Timestamps: t.Timestamps[start:end],
		Targets:    t.Targets[start:end],
		Features:   t.Features[start:end],
		NLags:      t.NLags,
		Frequency:  t.Frequency,
	}
}

// Split separates the last k rows from the rest, keeping temporal order.
func (t *Table) Split(k int) (train, test *Table) {
	cut := t.Len() - k
	if cut < 0 {
		cut = 0
	}
	if cut > t.Len() {
		cut = t.Len()
	}
	return t.Slice(0, cut), t.Slice(cut, t.Len())
}

// NextFeatures returns the lag vector for the period after the last row:
// the last target becomes lag 1 and every other lag moves back one place.
func (t *Table) NextFeatures() []float64 {
	if t.Len() == 0 {
		return nil
	}
	last := t.Len() - 1
	next := make([]float64, t.NLags)
	next[0] = t.Targets[last]
	copy(next[1:], t.Features[last][:t.NLags-1])
	return next
}

// Shift pushes a new most-recent value into a lag vector, dropping the
// oldest lag. The input is left untouched.
func Shift(lags []float64, value float64) []float64 {
	next := make([]float64, len(lags))
	if len(lags) == 0 {
		return next
	}
	next[0] = value
	copy(next[1:], lags[:len(lags)-1])
	return next
}
