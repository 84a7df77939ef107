package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/cestabasica/features"
	"github.com/sartorproj/cestabasica/timeseries"
)

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func weeklySeries(t *testing.T, values []float64) *timeseries.Series {
	t.Helper()
	ts := make([]time.Time, len(values))
	for i := range ts {
		ts[i] = monday.AddDate(0, 0, 7*i)
	}
	s, err := timeseries.NewWithTimestamps(ts, values)
	require.NoError(t, err)
	return s
}

func table(t *testing.T, values []float64, nLags int) *features.Table {
	t.Helper()
	tbl, err := features.Lagged(weeklySeries(t, values), nLags, timeseries.DefaultFrequency)
	require.NoError(t, err)
	return tbl
}

func TestEvaluateStepTrend(t *testing.T) {
	values := []float64{10, 10, 10, 10, 11, 11, 11, 11, 12, 12, 12, 12, 13, 13, 13, 13}
	tbl := table(t, values, 4)
	require.Equal(t, 12, tbl.Len())

	ev, err := New(DefaultConfig()).Evaluate(tbl, 4)
	require.NoError(t, err)

	assert.Equal(t, 8, ev.TrainSize)
	assert.Equal(t, 4, ev.TestSize)
	require.NotNil(t, ev.Metrics.MAPE)
	t.Logf("MAPE=%.4f RMSE=%.4f MAE=%.4f", *ev.Metrics.MAPE, ev.Metrics.RMSE, ev.Metrics.MAE)
	assert.Less(t, *ev.Metrics.MAPE, 0.10)
	assert.True(t, ev.ObjectiveMet)
	assert.InDelta(t, math.Sqrt(ev.Metrics.MSE), ev.Metrics.RMSE, 1e-12)

	for _, row := range ev.Rows {
		assert.True(t, row.Timestamp.After(ev.TrainEnd))
		require.NotNil(t, row.Actual)
		assert.Equal(t, 13.0, *row.Actual)
	}
}

func TestEvaluateInsufficientData(t *testing.T) {
	tbl := table(t, []float64{1, 2, 3, 4, 5, 6}, 2)
	eng := New(DefaultConfig())

	_, err := eng.Evaluate(tbl, tbl.Len())
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = eng.Evaluate(tbl, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)

	ev, err := eng.Evaluate(tbl, tbl.Len()-1)
	require.NoError(t, err)
	assert.Equal(t, 1, ev.TrainSize)
}

func TestEvaluateZeroActualMakesMAPEUndefined(t *testing.T) {
	values := []float64{3, 2, 1, 0, 3, 2, 1, 0, 3, 2, 1, 0}
	ev, err := New(DefaultConfig()).Evaluate(table(t, values, 2), 4)
	require.NoError(t, err)

	assert.True(t, ev.Metrics.MAPEUndefined())
	assert.True(t, math.IsNaN(ev.Metrics.MAPEPercent()))
	assert.False(t, ev.ObjectiveMet)
	assert.False(t, math.IsNaN(ev.Metrics.RMSE))
}

func TestForecastRecursive(t *testing.T) {
	values := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17, 19}
	tbl := table(t, values, 3)

	eng := New(DefaultConfig())
	first, err := eng.Forecast(tbl, 6)
	require.NoError(t, err)
	second, err := eng.Forecast(tbl, 6)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same seed, same forecast")

	last := tbl.Timestamps[tbl.Len()-1]
	for i, p := range first {
		assert.Equal(t, last.AddDate(0, 0, 7*(i+1)), p.Timestamp)
		assert.Nil(t, p.Actual)
		assert.GreaterOrEqual(t, p.Predicted, 10.0)
		assert.LessOrEqual(t, p.Predicted, 19.0)
	}

	_, err = eng.Forecast(tbl, 0)
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

// lastLag predicts its first feature plus one.
type lastLag struct{ fitted bool }

func (m *lastLag) Fit([][]float64, []float64) error { m.fitted = true; return nil }
func (m *lastLag) Predict(x []float64) float64      { return x[0] + 1 }

func TestRecursiveShiftsWindow(t *testing.T) {
	freq := timeseries.Frequency{Unit: timeseries.Monthly}
	out := Recursive(&lastLag{}, []float64{5, 4, 3}, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), freq, 3)

	require.Len(t, out, 3)
	assert.Equal(t, []float64{6, 7, 8}, []float64{out[0].Predicted, out[1].Predicted, out[2].Predicted})
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), out[2].Timestamp)
}

func TestCustomModel(t *testing.T) {
	m := &lastLag{}
	cfg := DefaultConfig()
	cfg.NewModel = func() Model { return m }

	future, err := New(cfg).Forecast(table(t, []float64{1, 2, 3, 4, 5}, 2), 2)
	require.NoError(t, err)
	assert.True(t, m.fitted)
	assert.Equal(t, 6.0, future[0].Predicted)
	assert.Equal(t, 7.0, future[1].Predicted)
}
