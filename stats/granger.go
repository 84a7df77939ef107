package stats

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// perfectFitTol is the residual ratio below which the unrestricted model is
// treated as an exact fit.
const perfectFitTol = 1e-20

// GrangerLag is the test at a single lag order. An exact fit of the
// unrestricted model has FStatistic=+Inf, encoded as null in JSON.
type GrangerLag struct {
	Lag        int     `json:"lag"`
	FStatistic float64 `json:"f_statistic"`
	PValue     float64 `json:"p_value"`
	DFNum      int     `json:"df_num"`
	DFDenom    int     `json:"df_denom"`
	// Chi2PValue is the asymptotic χ² version of the same restriction.
	Chi2PValue float64 `json:"chi2_p_value"`
}

// GrangerResult summarizes whether cause helps predict effect.
type GrangerResult struct {
	Lags        []GrangerLag `json:"lags"`
	MinPValue   float64      `json:"min_p_value"`
	BestLag     int          `json:"best_lag"`
	Significant bool         `json:"significant"`
}

// Granger tests whether the history of cause improves the prediction of
// effect beyond effect's own history, for every lag order 1..maxLag.
//
// At lag p the restricted model regresses effect_t on a constant and
// effect_{t-1..t-p}; the unrestricted model adds cause_{t-1..t-p}. Both use
// the n-p observations with complete lags. The sum-of-squared-residuals
// F-test has (p, n-3p-1) degrees of freedom.
//
// The result reports the minimum p-value over lag orders and is significant
// when it is below alpha. A restriction that explains nothing (equal
// residual sums) yields F=0 and p=1; this is what identical inputs produce.
// When cause's lags leave no residual at all, F=+Inf and p=0.
func Granger(cause, effect []float64, maxLag int, alpha float64) (*GrangerResult, error) {
	if maxLag < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLag, maxLag)
	}
	if len(cause) != len(effect) {
		return nil, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(cause), len(effect))
	}

	res := &GrangerResult{MinPValue: math.Inf(1)}
	for p := 1; p <= maxLag; p++ {
		lag, err := grangerAtLag(cause, effect, p)
		if err != nil {
			return nil, fmt.Errorf("granger lag %d: %w", p, err)
		}
		res.Lags = append(res.Lags, lag)
		if lag.PValue < res.MinPValue {
			res.MinPValue = lag.PValue
			res.BestLag = p
		}
	}
	res.Significant = res.MinPValue < alpha
	return res, nil
}

func grangerAtLag(cause, effect []float64, p int) (GrangerLag, error) {
	n := len(effect)
	rows := n - p
	dfDenom := rows - (2*p + 1)
	if dfDenom <= 0 {
		return GrangerLag{}, fmt.Errorf("%w: %d observations leave no degrees of freedom at lag %d",
			ErrTestFailed, n, p)
	}

	restricted := make([][]float64, rows)
	unrestricted := make([][]float64, rows)
	y := make([]float64, rows)
	for r := 0; r < rows; r++ {
		t := r + p
		y[r] = effect[t]
		rr := make([]float64, 1+p)
		ur := make([]float64, 1+2*p)
		rr[0], ur[0] = 1, 1
		for i := 1; i <= p; i++ {
			rr[i] = effect[t-i]
			ur[i] = effect[t-i]
			ur[p+i] = cause[t-i]
		}
		restricted[r] = rr
		unrestricted[r] = ur
	}

	fitR, err := fitOLS(restricted, y)
	if err != nil {
		return GrangerLag{}, err
	}
	fitU, err := fitOLS(unrestricted, y)
	if err != nil {
		return GrangerLag{}, err
	}

	out := GrangerLag{Lag: p, DFNum: p, DFDenom: dfDenom, PValue: 1, Chi2PValue: 1}
	num := fitR.ssr - fitU.ssr
	switch {
	case num <= 0:
		return out, nil
	case fitU.ssr <= perfectFitTol*fitR.ssr:
		// cause's lags reproduce effect exactly
		out.FStatistic = math.Inf(1)
		out.PValue, out.Chi2PValue = 0, 0
		return out, nil
	}

	out.FStatistic = (num / float64(p)) / (fitU.ssr / float64(dfDenom))
	out.PValue = clamp01(distuv.F{D1: float64(p), D2: float64(dfDenom)}.Survival(out.FStatistic))

	chi2 := float64(rows) * num / fitU.ssr
	out.Chi2PValue = clamp01(distuv.ChiSquared{K: float64(p)}.Survival(chi2))
	return out, nil
}

// MarshalJSON encodes a non-finite F statistic as null.
func (g GrangerLag) MarshalJSON() ([]byte, error) {
	type plain GrangerLag
	out := struct {
		plain
		FStatistic *float64 `json:"f_statistic"`
	}{plain: plain(g)}
	if !math.IsInf(g.FStatistic, 0) && !math.IsNaN(g.FStatistic) {
		out.FStatistic = &g.FStatistic
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON; a null F statistic decodes as +Inf.
func (g *GrangerLag) UnmarshalJSON(data []byte) error {
	type plain GrangerLag
	var in struct {
		plain
		FStatistic *float64 `json:"f_statistic"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*g = GrangerLag(in.plain)
	g.FStatistic = math.Inf(1)
	if in.FStatistic != nil {
		g.FStatistic = *in.FStatistic
	}
	return nil
}

func clamp01(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
