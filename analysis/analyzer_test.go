package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/cestabasica/dataset"
	"github.com/sartorproj/cestabasica/features"
	"github.com/sartorproj/cestabasica/forecast"
	"github.com/sartorproj/cestabasica/forest"
	"github.com/sartorproj/cestabasica/leadlag"
	"github.com/sartorproj/cestabasica/logging"
	"github.com/sartorproj/cestabasica/stats"
	"github.com/sartorproj/cestabasica/timeseries"
)

var monday = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

func weeklyObs(product, establishment string, weeks int, price func(int) float64, categories ...string) []dataset.Observation {
	obs := make([]dataset.Observation, weeks)
	for i := range obs {
		obs[i] = dataset.Observation{
			ProductID:       product,
			EstablishmentID: establishment,
			CollectedAt:     monday.AddDate(0, 0, 7*i+1),
			Price:           price(i),
			PPK:             price(i),
			Categories:      categories,
		}
	}
	return obs
}

func smooth(i int) float64 { return 10 + math.Sin(float64(i)/4) }

func noise(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.2 * rng.NormFloat64()
	}
	return out
}

func fixture() *dataset.Dataset {
	na, nb := noise(3, 60), noise(5, 60)
	var obs []dataset.Observation
	obs = append(obs, weeklyObs("Alface", "Mercado A", 60, func(i int) float64 { return smooth(i) + na[i] }, dataset.Vegetais)...)
	obs = append(obs, weeklyObs("Alface", "Mercado B", 60, func(i int) float64 { return smooth(i) + 0.5 + nb[i] }, dataset.Vegetais)...)
	obs = append(obs, weeklyObs("Arroz", "Mercado A", 60, func(i int) float64 { return 5 + 0.02*float64(i) }, dataset.GraosMassas)...)
	obs = append(obs, weeklyObs("Picanha", "Mercado A", 3, func(int) float64 { return 70 }, dataset.CarnesVermelhas)...)
	obs = append(obs, weeklyObs("Queijo", "Mercado A", 10, func(i int) float64 { return 40 + float64(i) }, dataset.Laticinios)...)
	return dataset.New(obs)
}

func newAnalyzer(opts ...Option) *Analyzer {
	return New(fixture(), append([]Option{WithLogger(logging.Discard())}, opts...)...)
}

func TestCategoryForecast(t *testing.T) {
	report := newAnalyzer().CategoryForecast(context.Background(), "Classe_Vegetais", DefaultForecastParams())
	require.True(t, report.OK(), "%v", report.Error)

	assert.Equal(t, ScopeCategory, report.Scope)
	assert.Equal(t, dataset.Vegetais, report.Target)
	assert.Equal(t, 60, report.Series.Periods)
	assert.Equal(t, monday, report.Series.Start)

	ev := report.Evaluation
	assert.Equal(t, 44, ev.TrainSize)
	assert.Equal(t, 12, ev.TestSize)
	require.NotNil(t, ev.Metrics.MAPE)
	t.Logf("MAPE %.2f%%", ev.Metrics.MAPEPercent())
	assert.Less(t, *ev.Metrics.MAPE, 0.10)
	assert.True(t, report.ObjectiveMet())

	require.Len(t, report.Future, 12)
	assert.Equal(t, report.Series.End.AddDate(0, 0, 7), report.Future[0].Timestamp)
}

func TestProductForecast(t *testing.T) {
	report := newAnalyzer().ProductForecast(context.Background(), "Arroz", DefaultForecastParams())
	require.True(t, report.OK(), "%v", report.Error)
	assert.Equal(t, ScopeProduct, report.Scope)
	assert.Len(t, report.Future, 12)
}

func TestForecastWithoutFrequencyIsWeekly(t *testing.T) {
	report := newAnalyzer().CategoryForecast(context.Background(), dataset.Vegetais,
		ForecastParams{NLags: 4, TestWindow: 12, Horizon: 12})
	require.True(t, report.OK(), "%v", report.Error)
	assert.Equal(t, 60, report.Series.Periods)
	assert.Equal(t, report.Series.End.AddDate(0, 0, 7), report.Future[0].Timestamp)
}

func TestForecastErrors(t *testing.T) {
	an := newAnalyzer()
	ctx := context.Background()

	noLags := DefaultForecastParams()
	noLags.NLags = 0
	noHorizon := DefaultForecastParams()
	noHorizon.Horizon = 0

	tests := []struct {
		name   string
		report *ForecastReport
		want   Kind
	}{
		{"unmatched category", an.CategoryForecast(ctx, dataset.Aves, DefaultForecastParams()), EmptySelection},
		{"unknown product", an.ProductForecast(ctx, "Café", DefaultForecastParams()), EmptySelection},
		{"history shorter than lags", an.CategoryForecast(ctx, dataset.CarnesVermelhas, DefaultForecastParams()), InsufficientHistory},
		{"test window too large", an.CategoryForecast(ctx, dataset.Laticinios, DefaultForecastParams()), InsufficientData},
		{"zero lags", an.CategoryForecast(ctx, dataset.Vegetais, noLags), InvalidParameter},
		{"zero horizon", an.CategoryForecast(ctx, dataset.Vegetais, noHorizon), InvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, tt.report.OK())
			assert.Equal(t, tt.want, tt.report.Error.Kind)
			assert.NotEmpty(t, tt.report.Error.Message)
			assert.Nil(t, tt.report.Series)
			assert.Nil(t, tt.report.Evaluation)
			assert.Nil(t, tt.report.Future)
		})
	}
}

func TestErrorReportJSON(t *testing.T) {
	report := newAnalyzer().CategoryForecast(context.Background(), dataset.Aves, DefaultForecastParams())
	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "evaluation")
	assert.NotContains(t, decoded, "future")
	assert.Equal(t, "EmptySelection", decoded["error"].(map[string]any)["kind"])
	assert.Equal(t, "W-MON", decoded["params"].(map[string]any)["frequency"])
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := newAnalyzer().CategoryForecast(ctx, dataset.Vegetais, DefaultForecastParams())
	require.False(t, report.OK())
	assert.Equal(t, Internal, report.Error.Kind)
}

type panicModel struct{}

func (panicModel) Fit([][]float64, []float64) error { return nil }
func (panicModel) Predict([]float64) float64        { panic("singular matrix") }

func TestPanicIsReportedAsTestFailure(t *testing.T) {
	cfg := forecast.DefaultConfig()
	cfg.NewModel = func() forecast.Model { return panicModel{} }

	report := newAnalyzer(WithForecastConfig(cfg)).CategoryForecast(context.Background(), dataset.Vegetais, DefaultForecastParams())
	require.False(t, report.OK())
	assert.Equal(t, StatisticalTestFailure, report.Error.Kind)
	assert.Contains(t, report.Error.Message, "singular matrix")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{fmt.Errorf("x: %w", dataset.ErrEmptySelection), EmptySelection},
		{fmt.Errorf("x: %w", timeseries.ErrEmptySeries), EmptySeries},
		{features.ErrInsufficientHistory, InsufficientHistory},
		{forecast.ErrInsufficientData, InsufficientData},
		{forest.ErrEmptyTrainingSet, InsufficientData},
		{leadlag.ErrInsufficientPairedData, InsufficientPairedData},
		{fmt.Errorf("pass 2: %w", stats.ErrStationarizationFailed), StationarizationFailed},
		{leadlag.ErrAlignmentFailure, AlignmentFailure},
		{fmt.Errorf("adf: %w", stats.ErrTestFailed), StatisticalTestFailure},
		{stats.ErrInvalidLag, InvalidParameter},
		{timeseries.ErrUnknownFrequency, InvalidParameter},
		{errors.New("disk on fire"), Internal},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

// memoryCache is a ReportCache backed by a map of JSON documents.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (c *memoryCache) Set(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func TestForecastCache(t *testing.T) {
	cache := newMemoryCache()
	an := newAnalyzer(WithCache(cache))
	ctx := context.Background()

	first := an.CategoryForecast(ctx, dataset.Vegetais, DefaultForecastParams())
	require.True(t, first.OK())
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.sets)

	second := an.CategoryForecast(ctx, dataset.Vegetais, DefaultForecastParams())
	require.True(t, second.OK())
	assert.True(t, second.Cached)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, *first.Evaluation.Metrics.MAPE, *second.Evaluation.Metrics.MAPE)
	assert.Len(t, second.Future, len(first.Future))

	other := DefaultForecastParams()
	other.NLags = 3
	third := an.CategoryForecast(ctx, dataset.Vegetais, other)
	assert.False(t, third.Cached)

	failed := an.CategoryForecast(ctx, dataset.Aves, DefaultForecastParams())
	require.False(t, failed.OK())
	assert.Equal(t, 2, cache.sets, "failures are not cached")
}

func TestConfigKey(t *testing.T) {
	base := forecast.DefaultConfig()
	key := configKey(base)

	variants := map[string]func(*forecast.Config){
		"estimators":        func(c *forecast.Config) { c.Forest.Estimators = 50 },
		"seed":              func(c *forecast.Config) { c.Forest.Seed = 7 },
		"max depth":         func(c *forecast.Config) { c.Forest.MaxDepth = 5 },
		"min samples split": func(c *forecast.Config) { c.Forest.MinSamplesSplit = 4 },
		"min samples leaf":  func(c *forecast.Config) { c.Forest.MinSamplesLeaf = 3 },
		"max features":      func(c *forecast.Config) { c.Forest.MaxFeatures = 2 },
		"bootstrap":         func(c *forecast.Config) { c.Forest.Bootstrap = false },
		"objective":         func(c *forecast.Config) { c.Objective = 0.05 },
	}
	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			assert.NotEqual(t, key, configKey(cfg))
		})
	}

	workers := base
	workers.Forest.Workers = 8
	assert.Equal(t, key, configKey(workers), "worker count does not change predictions")

	custom := base
	custom.NewModel = func() forecast.Model { return &meanModel{} }
	assert.Empty(t, configKey(custom))
}

// meanModel predicts the mean training target.
type meanModel struct{ mean float64 }

func (m *meanModel) Fit(_ [][]float64, y []float64) error {
	for _, v := range y {
		m.mean += v / float64(len(y))
	}
	return nil
}

func (m *meanModel) Predict([]float64) float64 { return m.mean }

func TestForecastCacheSeparatesEngines(t *testing.T) {
	cache := newMemoryCache()
	ctx := context.Background()

	first := newAnalyzer(WithCache(cache)).CategoryForecast(ctx, dataset.Vegetais, DefaultForecastParams())
	require.True(t, first.OK())
	require.Equal(t, 1, cache.sets)

	leafy := forecast.DefaultConfig()
	leafy.Forest.MinSamplesLeaf = 5
	other := newAnalyzer(WithCache(cache), WithForecastConfig(leafy)).CategoryForecast(ctx, dataset.Vegetais, DefaultForecastParams())
	require.True(t, other.OK())
	assert.False(t, other.Cached)
	assert.Equal(t, 2, cache.sets)

	custom := forecast.DefaultConfig()
	custom.NewModel = func() forecast.Model { return &meanModel{} }
	an := newAnalyzer(WithCache(cache), WithForecastConfig(custom))
	for i := 0; i < 2; i++ {
		report := an.CategoryForecast(ctx, dataset.Vegetais, DefaultForecastParams())
		require.True(t, report.OK(), "%v", report.Error)
		assert.False(t, report.Cached)
	}
	assert.Equal(t, 2, cache.sets, "custom model reports are not cached")
}

func TestForecastCategories(t *testing.T) {
	an := newAnalyzer(WithBatchParallelism(3))
	categories := []string{dataset.Vegetais, dataset.Aves, dataset.GraosMassas, dataset.Laticinios}

	batch := an.ForecastCategories(context.Background(), categories, DefaultForecastParams())

	_, err := uuid.Parse(batch.BatchID)
	require.NoError(t, err)
	require.Len(t, batch.Reports, 4)
	for i, r := range batch.Reports {
		assert.Equal(t, categories[i], r.Target)
	}
	assert.Equal(t, 2, batch.Successful)
	assert.Equal(t, 2, batch.Failed)
	assert.LessOrEqual(t, batch.ObjectivesMet, batch.Successful)
	assert.False(t, batch.FinishedAt.Before(batch.StartedAt))
}

func TestLeadLagReport(t *testing.T) {
	an := newAnalyzer()
	ctx := context.Background()

	report := an.LeadLag(ctx, "Alface", "Mercado A", "Mercado B", DefaultLeadLagParams())
	require.True(t, report.OK(), "%v", report.Error)
	assert.Equal(t, 60, report.PairedPeriods)
	assert.Len(t, report.CCF.Values, 8)
	assert.NotEmpty(t, report.Leader)
	assert.NotEmpty(t, report.StationarityA.Verdict)
	assert.Equal(t, monday, *report.Start)

	short := an.LeadLag(ctx, "Alface", "Mercado A", "Mercado B", LeadLagParams{Frequency: timeseries.DefaultFrequency, MaxLag: 45, Alpha: 0.05})
	require.False(t, short.OK())
	assert.Equal(t, InsufficientPairedData, short.Error.Kind)
	assert.Nil(t, short.AToB)
	assert.Nil(t, short.CCF)

	missing := an.LeadLag(ctx, "Alface", "Mercado A", "Mercado Z", DefaultLeadLagParams())
	assert.Equal(t, EmptySelection, missing.Error.Kind)

	invalid := an.LeadLag(ctx, "Alface", "Mercado A", "Mercado B", LeadLagParams{MaxLag: 0})
	assert.Equal(t, InvalidParameter, invalid.Error.Kind)
}

func TestLeadLagReportMixedOrders(t *testing.T) {
	res := &leadlag.Result{
		Product:       "Arroz",
		EntityA:       "Mercado A",
		EntityB:       "Mercado B",
		AToB:          &stats.GrangerResult{},
		BToA:          &stats.GrangerResult{},
		Leader:        leadlag.NoLeader,
		CCF:           &stats.CrossCorrelation{},
		StationarityA: &stats.StationarityResult{Differences: 1, Stationary: true},
		StationarityB: &stats.StationarityResult{Stationary: true},
		MixedOrders:   true,
	}

	data, err := json.Marshal(leadLagReport(res, DefaultLeadLagParams()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["mixed_integration_orders"])

	res.MixedOrders = false
	data, err = json.Marshal(leadLagReport(res, DefaultLeadLagParams()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "mixed_integration_orders")
}
