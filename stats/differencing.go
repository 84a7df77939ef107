package stats

import (
	"fmt"
	"strings"

	"github.com/sartorproj/cestabasica/timeseries"
)

// StationarizeOptions controls the differencing policy.
type StationarizeOptions struct {
	// MaxDiffPasses bounds how many times the series may be differenced.
	MaxDiffPasses int
	// Alpha is the significance level; p-values above it call for another
	// differencing pass.
	Alpha float64
	// MaxLag is passed to ADF (0 selects the default order).
	MaxLag int
}

// DefaultStationarizeOptions allows two differencing passes at the 5% level.
func DefaultStationarizeOptions() StationarizeOptions {
	return StationarizeOptions{MaxDiffPasses: 2, Alpha: 0.05}
}

// StationarityResult is the outcome of Stationarize.
type StationarityResult struct {
	Series      *timeseries.Series
	Differences int
	Stationary  bool
	// PValues holds the ADF p-value of every test run, original series first.
	PValues []float64
	Verdict string
}

// Stationarize tests the series with ADF and differences it while the
// p-value exceeds Alpha and passes remain.
//
// A series that is still non-stationary after the last pass is returned
// with Stationary=false. ErrStationarizationFailed is returned when a pass
// leaves no observation; ADF failures are returned wrapped in ErrTestFailed.
func Stationarize(series *timeseries.Series, opts StationarizeOptions) (*StationarityResult, error) {
	if opts.Alpha <= 0 {
		opts.Alpha = 0.05
	}
	if opts.MaxDiffPasses < 0 {
		opts.MaxDiffPasses = 0
	}

	res := &StationarityResult{Series: series}
	current := series
	for {
		adf, err := ADF(current, opts.MaxLag)
		if err != nil {
			return nil, fmt.Errorf("after %d differencing passes: %w", res.Differences, err)
		}
		res.PValues = append(res.PValues, adf.PValue)
		res.Series = current

		if adf.PValue <= opts.Alpha {
			res.Stationary = true
			break
		}
		if res.Differences >= opts.MaxDiffPasses {
			break
		}

		current = current.Diff()
		res.Differences++
		if current.Len() == 0 {
			return nil, fmt.Errorf("%w: pass %d", ErrStationarizationFailed, res.Differences)
		}
	}

	res.Verdict = verdict(res, opts.Alpha)
	return res, nil
}

func verdict(res *StationarityResult, alpha float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "original series p=%.4f", res.PValues[0])
	for i, p := range res.PValues[1:] {
		fmt.Fprintf(&b, "; after %d differencing pass(es) p=%.4f", i+1, p)
	}
	switch {
	case res.Stationary && res.Differences == 0:
		fmt.Fprintf(&b, ": stationary at the %.0f%% level", alpha*100)
	case res.Stationary:
		fmt.Fprintf(&b, ": stationary after %d differencing pass(es)", res.Differences)
	default:
		fmt.Fprintf(&b, ": still non-stationary after %d differencing pass(es)", res.Differences)
	}
	return b.String()
}
