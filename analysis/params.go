package analysis

import (
	"fmt"

	"github.com/sartorproj/cestabasica/timeseries"
)

// ForecastParams are the per-request forecasting parameters.
type ForecastParams struct {
	Frequency  timeseries.Frequency `json:"frequency"`
	NLags      int                  `json:"n_lags"`
	TestWindow int                  `json:"test_window"`
	Horizon    int                  `json:"horizon"`
}

// DefaultForecastParams uses 4 weekly lags, a 12-week test window and a
// 12-week horizon.
func DefaultForecastParams() ForecastParams {
	return ForecastParams{
		Frequency:  timeseries.DefaultFrequency,
		NLags:      4,
		TestWindow: 12,
		Horizon:    12,
	}
}

func (p ForecastParams) key() string {
	return fmt.Sprintf("%s/%d/%d/%d", p.Frequency, p.NLags, p.TestWindow, p.Horizon)
}

// LeadLagParams are the per-request lead-lag parameters.
type LeadLagParams struct {
	Frequency     timeseries.Frequency `json:"frequency"`
	MaxLag        int                  `json:"max_lag"`
	MaxDiffPasses int                  `json:"max_diff_passes"`
	Alpha         float64              `json:"alpha"`
}

// DefaultLeadLagParams tests up to 8 weekly lags at the 5% level with at
// most two differencing passes.
func DefaultLeadLagParams() LeadLagParams {
	return LeadLagParams{
		Frequency:     timeseries.DefaultFrequency,
		MaxLag:        8,
		MaxDiffPasses: 2,
		Alpha:         0.05,
	}
}

func (p LeadLagParams) key() string {
	return fmt.Sprintf("%s/%d/%d/%g", p.Frequency, p.MaxLag, p.MaxDiffPasses, p.Alpha)
}
