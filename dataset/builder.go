package dataset

import (
	"fmt"

	"github.com/sartorproj/cestabasica/timeseries"
)

// BuildSeries aggregates the PPK of the observations matching pred into a
// regular series of freq.
//
// Every period between the first and last observation gets the mean PPK of
// its observations. Empty periods take the previous period's value; periods
// before the first observation cannot be filled and are dropped, so the
// result has no gaps.
//
// Errors: ErrEmptySelection when nothing matches, timeseries.ErrEmptySeries
// when no defined period remains.
func BuildSeries(ds *Dataset, pred Predicate, freq timeseries.Frequency) (*timeseries.Series, error) {
	selected := ds.Filter(pred)
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	series := timeseries.Resample(Points(selected), freq).ForwardFill().DropUndefined()
	if series.Len() == 0 {
		return nil, fmt.Errorf("%d observations selected: %w", len(selected), timeseries.ErrEmptySeries)
	}
	return series, nil
}

// Points extracts (collection time, PPK) pairs.
func Points(obs []Observation) []timeseries.Point {
	points := make([]timeseries.Point, len(obs))
	for i, o := range obs {
		points[i] = timeseries.Point{Time: o.CollectedAt, Value: o.PPK}
	}
	return points
}

// Pivot groups observations by establishment and collapses records sharing
// a collection time into their mean PPK. Only the requested establishments
// are kept; missing ones map to nil.
func Pivot(obs []Observation, establishments ...string) map[string][]timeseries.Point {
	raw := make(map[string][]timeseries.Point, len(establishments))
	for _, e := range establishments {
		raw[e] = nil
	}
	for _, o := range obs {
		if _, ok := raw[o.EstablishmentID]; !ok {
			continue
		}
		raw[o.EstablishmentID] = append(raw[o.EstablishmentID], timeseries.Point{Time: o.CollectedAt, Value: o.PPK})
	}

	out := make(map[string][]timeseries.Point, len(raw))
	for e, points := range raw {
		if len(points) == 0 {
			out[e] = nil
			continue
		}
		out[e] = timeseries.MeanByTime(points)
	}
	return out
}
