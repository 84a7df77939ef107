package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// CrossCorrelation is the lagged correlation between two series.
type CrossCorrelation struct {
	Lags           []int     `json:"lags"`
	Values         []float64 `json:"values"`
	StrongestLag   int       `json:"strongest_lag"`
	StrongestValue float64   `json:"strongest_value"`
}

// CrossCorrelate computes, for k = 1..maxLag,
//
//	ccf(k) = Σ_t (a_t - ā)(b_{t+k} - b̄) / (n-k) / (σ_a σ_b)
//
// with population standard deviations, i.e. the correlation between a and b
// k periods later. A peak at k > 0 means movements in a show up in b k
// periods later. Lag 0 is not reported.
//
// The strongest lag has the largest |ccf|; ties keep the lowest lag.
func CrossCorrelate(a, b []float64, maxLag int) (*CrossCorrelation, error) {
	if maxLag < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLag, maxLag)
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(a), len(b))
	}
	n := len(a)
	if n <= maxLag {
		return nil, fmt.Errorf("%w: %d observations for %d lags", ErrTestFailed, n, maxLag)
	}

	meanA, stdA := stat.PopMeanStdDev(a, nil)
	meanB, stdB := stat.PopMeanStdDev(b, nil)
	if stdA == 0 || stdB == 0 {
		return nil, fmt.Errorf("%w: cross-correlation of a constant series", ErrTestFailed)
	}

	cc := &CrossCorrelation{
		Lags:   make([]int, maxLag),
		Values: make([]float64, maxLag),
	}
	for k := 1; k <= maxLag; k++ {
		sum := 0.0
		for t := 0; t+k < n; t++ {
			sum += (a[t] - meanA) * (b[t+k] - meanB)
		}
		v := sum / float64(n-k) / (stdA * stdB)
		cc.Lags[k-1] = k
		cc.Values[k-1] = v
		if k == 1 || math.Abs(v) > math.Abs(cc.StrongestValue) {
			cc.StrongestLag = k
			cc.StrongestValue = v
		}
	}
	return cc, nil
}

// ACF is the cross-correlation of a series with itself at lags 1..maxLag.
func ACF(x []float64, maxLag int) (*CrossCorrelation, error) {
	return CrossCorrelate(x, x, maxLag)
}
