package analysis

import (
	"time"

	"github.com/sartorproj/cestabasica/forecast"
	"github.com/sartorproj/cestabasica/leadlag"
	"github.com/sartorproj/cestabasica/stats"
	"github.com/sartorproj/cestabasica/timeseries"
)

// Scope tells what a forecast was built for.
type Scope string

const (
	ScopeCategory Scope = "category"
	ScopeProduct  Scope = "product"
)

// SeriesSummary describes the series a forecast was trained on.
type SeriesSummary struct {
	Periods int       `json:"periods"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Mean    float64   `json:"mean"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Last    float64   `json:"last"`
}

func summarize(s *timeseries.Series) *SeriesSummary {
	return &SeriesSummary{
		Periods: s.Len(),
		Start:   s.Start(),
		End:     s.End(),
		Mean:    s.Mean(),
		Min:     s.Min(),
		Max:     s.Max(),
		Last:    s.Values[s.Len()-1],
	}
}

// ForecastReport is the result of a category or product forecast. When
// Error is set every other data field is empty.
type ForecastReport struct {
	Scope  Scope          `json:"scope"`
	Target string         `json:"target"`
	Params ForecastParams `json:"params"`

	Series     *SeriesSummary       `json:"series,omitempty"`
	Evaluation *forecast.Evaluation `json:"evaluation,omitempty"`
	Future     []forecast.Point     `json:"future,omitempty"`

	Error  *ErrorInfo `json:"error,omitempty"`
	Cached bool       `json:"cached,omitempty"`
}

// OK reports whether the forecast succeeded.
func (r *ForecastReport) OK() bool {
	return r.Error == nil
}

// ObjectiveMet reports whether the evaluation met the MAPE objective.
func (r *ForecastReport) ObjectiveMet() bool {
	return r.Evaluation != nil && r.Evaluation.ObjectiveMet
}

// StationaritySummary is the differencing outcome for one side of a
// lead-lag pair.
type StationaritySummary struct {
	Differences int       `json:"differences"`
	Stationary  bool      `json:"stationary"`
	PValues     []float64 `json:"p_values"`
	Verdict     string    `json:"verdict"`
}

func summarizeStationarity(r *stats.StationarityResult) *StationaritySummary {
	return &StationaritySummary{
		Differences: r.Differences,
		Stationary:  r.Stationary,
		PValues:     r.PValues,
		Verdict:     r.Verdict,
	}
}

// LeadLagReport is the result of a lead-lag analysis. When Error is set
// every other data field is empty.
type LeadLagReport struct {
	Product string        `json:"product"`
	EntityA string        `json:"entity_a"`
	EntityB string        `json:"entity_b"`
	Params  LeadLagParams `json:"params"`

	AToB          *stats.GrangerResult    `json:"a_to_b,omitempty"`
	BToA          *stats.GrangerResult    `json:"b_to_a,omitempty"`
	Leader        leadlag.Leader          `json:"leader,omitempty"`
	CCF           *stats.CrossCorrelation `json:"ccf,omitempty"`
	StationarityA *StationaritySummary    `json:"stationarity_a,omitempty"`
	StationarityB *StationaritySummary    `json:"stationarity_b,omitempty"`
	MixedOrders   bool                    `json:"mixed_integration_orders,omitempty"`
	PairedPeriods int                     `json:"paired_periods,omitempty"`
	Observations  int                     `json:"observations,omitempty"`
	Start         *time.Time              `json:"start,omitempty"`
	End           *time.Time              `json:"end,omitempty"`

	Error  *ErrorInfo `json:"error,omitempty"`
	Cached bool       `json:"cached,omitempty"`
}

// OK reports whether the analysis succeeded.
func (r *LeadLagReport) OK() bool {
	return r.Error == nil
}

func leadLagReport(res *leadlag.Result, p LeadLagParams) *LeadLagReport {
	start, end := res.Start, res.End
	return &LeadLagReport{
		Product:       res.Product,
		EntityA:       res.EntityA,
		EntityB:       res.EntityB,
		Params:        p,
		AToB:          res.AToB,
		BToA:          res.BToA,
		Leader:        res.Leader,
		CCF:           res.CCF,
		StationarityA: summarizeStationarity(res.StationarityA),
		StationarityB: summarizeStationarity(res.StationarityB),
		MixedOrders:   res.MixedOrders,
		PairedPeriods: res.PairedPeriods,
		Observations:  res.Observations,
		Start:         &start,
		End:           &end,
	}
}
