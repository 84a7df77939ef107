// Package leadlag decides whether one establishment's price moves lead
// another's for the same product.
//
// Both establishments' PPK is put on a common period grid, each side is
// made stationary, and Granger causality is tested in both directions. The
// cross-correlation of the stationary series locates the delay.
package leadlag

import (
	"errors"
	"fmt"
	"time"

	"github.com/sartorproj/cestabasica/dataset"
	"github.com/sartorproj/cestabasica/stats"
	"github.com/sartorproj/cestabasica/timeseries"
)

var (
	// ErrInsufficientPairedData is returned when fewer than MaxLag+20
	// periods have a value for both establishments.
	ErrInsufficientPairedData = errors.New("leadlag: not enough periods with prices for both establishments")

	// ErrAlignmentFailure is returned when the stationary series share fewer
	// than MaxLag+1 periods.
	ErrAlignmentFailure = errors.New("leadlag: stationary series share too few periods")
)

// minExtraPeriods is the paired history required beyond MaxLag.
const minExtraPeriods = 20

// Leader names the side whose prices move first.
type Leader string

const (
	LeaderA       Leader = "A"
	LeaderB       Leader = "B"
	Bidirectional Leader = "bidirectional"
	NoLeader      Leader = "none"
)

// Options configures an analysis.
type Options struct {
	MaxLag        int
	Frequency     timeseries.Frequency
	MaxDiffPasses int
	Alpha         float64
}

// DefaultOptions tests up to 8 weekly lags at the 5% level.
func DefaultOptions() Options {
	return Options{
		MaxLag:        8,
		Frequency:     timeseries.DefaultFrequency,
		MaxDiffPasses: 2,
		Alpha:         0.05,
	}
}

// Result is the outcome of a lead-lag analysis.
type Result struct {
	Product string
	EntityA string
	EntityB string

	AToB   *stats.GrangerResult
	BToA   *stats.GrangerResult
	Leader Leader
	CCF    *stats.CrossCorrelation

	StationarityA *stats.StationarityResult
	StationarityB *stats.StationarityResult
	// MixedOrders is set when the sides were differenced a different number
	// of times, so Granger and CCF compare series of different integration
	// order.
	MixedOrders bool

	// Paired periods before stationarization, and the span they cover.
	PairedPeriods int
	// Periods left after stationarizing and aligning both sides; the
	// statistical tests run on these.
	Observations int
	Start        time.Time
	End          time.Time
}

// Analyzer runs lead-lag analyses on a dataset. It is safe for concurrent
// use.
type Analyzer struct {
	ds *dataset.Dataset
}

// New returns an Analyzer over ds.
func New(ds *dataset.Dataset) *Analyzer {
	return &Analyzer{ds: ds}
}

// Analyze tests whether entityA's prices for product lead entityB's.
func (a *Analyzer) Analyze(product, entityA, entityB string, opts Options) (*Result, error) {
	if opts.MaxLag < 1 {
		return nil, fmt.Errorf("%w: max lag %d", stats.ErrInvalidLag, opts.MaxLag)
	}
	if opts.Alpha <= 0 {
		opts.Alpha = 0.05
	}

	obs := a.ds.Filter(dataset.ForProduct(product))
	if len(obs) == 0 {
		return nil, fmt.Errorf("product %q: %w", product, dataset.ErrEmptySelection)
	}
	pivot := dataset.Pivot(obs, entityA, entityB)
	for _, e := range []string{entityA, entityB} {
		if len(pivot[e]) == 0 {
			return nil, fmt.Errorf("establishment %q has no prices for product %q: %w", e, product, dataset.ErrEmptySelection)
		}
	}

	seriesA, seriesB := pair(pivot[entityA], pivot[entityB], opts.Frequency)
	seriesA.Name, seriesB.Name = entityA, entityB
	if seriesA.Len() < opts.MaxLag+minExtraPeriods {
		return nil, fmt.Errorf("%w: %d periods, need %d", ErrInsufficientPairedData, seriesA.Len(), opts.MaxLag+minExtraPeriods)
	}

	stOpts := stats.StationarizeOptions{MaxDiffPasses: opts.MaxDiffPasses, Alpha: opts.Alpha}
	stA, err := stats.Stationarize(seriesA, stOpts)
	if err != nil {
		return nil, fmt.Errorf("stationarizing %q: %w", entityA, err)
	}
	stB, err := stats.Stationarize(seriesB, stOpts)
	if err != nil {
		return nil, fmt.Errorf("stationarizing %q: %w", entityB, err)
	}

	alignedA, alignedB := timeseries.Align(stA.Series, stB.Series)
	if alignedA.Len() < opts.MaxLag+1 {
		return nil, fmt.Errorf("%w: %d periods for max lag %d", ErrAlignmentFailure, alignedA.Len(), opts.MaxLag)
	}

	aToB, err := stats.Granger(alignedA.Values, alignedB.Values, opts.MaxLag, opts.Alpha)
	if err != nil {
		return nil, fmt.Errorf("granger %s -> %s: %w", entityA, entityB, err)
	}
	bToA, err := stats.Granger(alignedB.Values, alignedA.Values, opts.MaxLag, opts.Alpha)
	if err != nil {
		return nil, fmt.Errorf("granger %s -> %s: %w", entityB, entityA, err)
	}
	ccf, err := stats.CrossCorrelate(alignedA.Values, alignedB.Values, opts.MaxLag)
	if err != nil {
		return nil, fmt.Errorf("cross-correlation: %w", err)
	}

	return &Result{
		Product:       product,
		EntityA:       entityA,
		EntityB:       entityB,
		AToB:          aToB,
		BToA:          bToA,
		Leader:        verdict(aToB.Significant, bToA.Significant),
		CCF:           ccf,
		StationarityA: stA,
		StationarityB: stB,
		MixedOrders:   stA.Differences != stB.Differences,
		PairedPeriods: seriesA.Len(),
		Observations:  alignedA.Len(),
		Start:         seriesA.Start(),
		End:           seriesA.End(),
	}, nil
}

// pair resamples both sides onto the grid spanning both, forward-fills each
// and keeps the periods where both are defined.
func pair(a, b []timeseries.Point, freq timeseries.Frequency) (*timeseries.Series, *timeseries.Series) {
	from, to := a[0].Time, a[len(a)-1].Time
	if b[0].Time.Before(from) {
		from = b[0].Time
	}
	if b[len(b)-1].Time.After(to) {
		to = b[len(b)-1].Time
	}
	sa := timeseries.ResampleRange(a, freq, from, to).ForwardFill()
	sb := timeseries.ResampleRange(b, freq, from, to).ForwardFill()
	return timeseries.Align(sa, sb)
}

func verdict(aToB, bToA bool) Leader {
	switch {
	case aToB && bToA:
		return Bidirectional
	case aToB:
		return LeaderA
	case bToA:
		return LeaderB
	default:
		return NoLeader
	}
}
