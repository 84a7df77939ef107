package forecast

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Metrics are error measures over a held-out window.
type Metrics struct {
	MAE  float64 `json:"mae"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	// MAPE is a fraction (0.05 = 5%). It is nil when any actual value is
	// exactly zero, where the percentage error is undefined.
	MAPE *float64 `json:"mape"`
}

// MAPEUndefined reports whether MAPE could not be computed.
func (m Metrics) MAPEUndefined() bool {
	return m.MAPE == nil
}

// MAPEPercent returns MAPE in percent, or NaN when undefined.
func (m Metrics) MAPEPercent() float64 {
	if m.MAPE == nil {
		return math.NaN()
	}
	return *m.MAPE * 100
}

// ComputeMetrics compares actual and predicted values of equal length.
func ComputeMetrics(actual, predicted []float64) Metrics {
	n := len(actual)
	if n == 0 || n != len(predicted) {
		return Metrics{MAE: math.NaN(), MSE: math.NaN(), RMSE: math.NaN()}
	}

	errs := make([]float64, n)
	floats.SubTo(errs, actual, predicted)

	var m Metrics
	m.MAE = floats.Norm(errs, 1) / float64(n)
	m.MSE = floats.Dot(errs, errs) / float64(n)
	m.RMSE = math.Sqrt(m.MSE)

	if mape, ok := MAPE(actual, predicted); ok {
		m.MAPE = &mape
	}
	return m
}

// MAPE returns mean(|a-p|/|a|). ok is false when any actual is exactly zero
// or the inputs are empty or mismatched.
func MAPE(actual, predicted []float64) (mape float64, ok bool) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0, false
	}
	sum := 0.0
	for i, a := range actual {
		if a == 0 {
			return 0, false
		}
		sum += math.Abs(a-predicted[i]) / math.Abs(a)
	}
	return sum / float64(len(actual)), true
}
