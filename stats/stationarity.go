package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/cestabasica/timeseries"
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int // lagged differences used in the final regression
	NObs         int
	CriticalVals map[string]float64 // critical values at 1%, 5%, 10%
	ICBest       float64            // AIC of the selected lag order
	IsStationary bool
}

// ADF performs the Augmented Dickey-Fuller test for a unit root with a
// constant term. The null hypothesis is that the series has a unit root.
//
// The regression is
//
//	Δy_t = α + γ·y_{t-1} + Σ_{i=1..p} δ_i·Δy_{t-i}
//
// with p chosen by AIC over 0..maxLag on a common sample and then refitted
// on every usable observation. maxLag <= 0 selects ⌈12·(n/100)^{1/4}⌉,
// capped at n/2-2. The statistic is the t-ratio of γ and the p-value comes
// from MacKinnon's approximate asymptotic distribution.
func ADF(series *timeseries.Series, maxLag int) (*ADFResult, error) {
	x := series.Values
	n := len(x)
	if n < 6 {
		return nil, fmt.Errorf("%w: ADF needs at least 6 observations, got %d", ErrTestFailed, n)
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: ADF input contains undefined values", ErrTestFailed)
		}
	}

	if maxLag <= 0 {
		maxLag = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if limit := n/2 - 2; maxLag > limit {
		maxLag = limit
	}
	if maxLag < 0 {
		maxLag = 0
	}

	d := series.Diff().Values

	bestLag, bestAIC := 0, math.Inf(1)
	for lag := 0; lag <= maxLag; lag++ {
		fit, err := fitOLS(adfDesign(x, d, lag, maxLag))
		if err != nil {
			continue
		}
		if aic := fit.aic(); aic < bestAIC {
			bestLag, bestAIC = lag, aic
		}
	}
	if math.IsInf(bestAIC, 1) {
		return nil, fmt.Errorf("%w: no ADF lag order could be estimated", ErrTestFailed)
	}

	fit, err := fitOLS(adfDesign(x, d, bestLag, bestLag))
	if err != nil {
		return nil, err
	}
	tStat, err := fit.tStat(1)
	if err != nil {
		return nil, err
	}

	pValue := mackinnonPValue(tStat)
	return &ADFResult{
		Statistic:    tStat,
		PValue:       pValue,
		Lags:         bestLag,
		NObs:         fit.nObs,
		CriticalVals: mackinnonCriticalValues(fit.nObs),
		ICBest:       bestAIC,
		IsStationary: pValue <= 0.05,
	}, nil
}

// adfDesign builds the regression for lag differences, starting at row
// `from` so that lag orders compared by AIC share one sample. Columns are
// [1, y_{t-1}, Δy_{t-1} .. Δy_{t-lag}].
func adfDesign(x, d []float64, lag, from int) ([][]float64, []float64) {
	rows := len(d) - from
	design := make([][]float64, rows)
	target := make([]float64, rows)
	for r := 0; r < rows; r++ {
		j := r + from
		target[r] = d[j]
		row := make([]float64, 2+lag)
		row[0] = 1
		row[1] = x[j]
		for i := 1; i <= lag; i++ {
			row[1+i] = d[j-i]
		}
		design[r] = row
	}
	return design, target
}

// MacKinnon (1994) polynomial approximation for the constant-only
// regression with one integrated variable.
const (
	tauMax  = 2.74
	tauMin  = -18.83
	tauStar = -1.61
)

var (
	tauSmallP = []float64{2.1659, 1.4412, 0.038269}
	tauLargeP = []float64{1.7339, 0.93202, -0.12745, -0.010368}

	// MacKinnon (2010) response surface: b0 + b1/T + b2/T^2 + b3/T^3.
	tauCritical = map[string][]float64{
		"1%":  {-3.43035, -6.5393, -16.786, -79.433},
		"5%":  {-2.86154, -2.8903, -4.234, -40.040},
		"10%": {-2.56677, -1.5384, -2.809, 0},
	}
)

// mackinnonPValue returns the approximate p-value of an ADF statistic.
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat > tauMax:
		return 1
	case stat < tauMin:
		return 0
	}
	coef := tauLargeP
	if stat <= tauStar {
		coef = tauSmallP
	}
	return distuv.UnitNormal.CDF(polyval(coef, stat))
}

func mackinnonCriticalValues(nobs int) map[string]float64 {
	out := make(map[string]float64, len(tauCritical))
	for level, b := range tauCritical {
		out[level] = polyval(b, 1/float64(nobs))
	}
	return out
}

// polyval evaluates c[0] + c[1]x + c[2]x² + ...
func polyval(c []float64, x float64) float64 {
	sum := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		sum = sum*x + c[i]
	}
	return sum
}
