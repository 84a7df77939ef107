package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMetrics(t *testing.T) {
	actual := []float64{10, 20, 40}
	predicted := []float64{12, 18, 40}

	m := ComputeMetrics(actual, predicted)
	assert.InDelta(t, 4.0/3, m.MAE, 1e-12)
	assert.InDelta(t, 8.0/3, m.MSE, 1e-12)
	assert.InDelta(t, math.Sqrt(8.0/3), m.RMSE, 1e-12)
	require.NotNil(t, m.MAPE)
	assert.InDelta(t, (0.2+0.1+0)/3, *m.MAPE, 1e-12)
	assert.InDelta(t, 10, m.MAPEPercent(), 1e-9)
}

func TestMAPEScaleInvariant(t *testing.T) {
	actual := []float64{4.5, 7.25, 9.8, 12.1, 3.3}
	predicted := []float64{5, 7, 10.4, 11, 3.1}
	base, ok := MAPE(actual, predicted)
	require.True(t, ok)

	for _, c := range []float64{0.01, 0.5, 3, 1000} {
		sa := make([]float64, len(actual))
		sp := make([]float64, len(predicted))
		for i := range actual {
			sa[i] = actual[i] * c
			sp[i] = predicted[i] * c
		}
		scaled, ok := MAPE(sa, sp)
		require.True(t, ok)
		assert.InDelta(t, base, scaled, 1e-12, "scale %g", c)
	}
}

func TestMAPEUndefined(t *testing.T) {
	_, ok := MAPE([]float64{1, 0, 2}, []float64{1, 0, 2})
	assert.False(t, ok, "a zero actual makes MAPE undefined even for a perfect prediction")

	_, ok = MAPE(nil, nil)
	assert.False(t, ok)

	m := ComputeMetrics([]float64{0, 1}, []float64{1, 1})
	assert.True(t, m.MAPEUndefined())
	assert.Equal(t, 0.5, m.MAE)
}

func TestComputeMetricsMismatch(t *testing.T) {
	m := ComputeMetrics([]float64{1}, []float64{1, 2})
	assert.True(t, math.IsNaN(m.MAE))
	assert.True(t, m.MAPEUndefined())
}
