package leadlag

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/cestabasica/dataset"
	"github.com/sartorproj/cestabasica/stats"
)

var monday = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

// trendingWalk is a random walk with a strong upward drift.
func trendingWalk(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	level := 10.0
	for i := range out {
		level += 0.5 + rng.NormFloat64()
		out[i] = level
	}
	return out
}

func weekly(product, establishment string, values []float64, from int, skip map[int]bool) []dataset.Observation {
	var obs []dataset.Observation
	for i := from; i < len(values); i++ {
		if skip[i] {
			continue
		}
		obs = append(obs, dataset.Observation{
			ProductID:       product,
			EstablishmentID: establishment,
			// Collected on Wednesdays; the weekly grid starts on Mondays.
			CollectedAt: monday.AddDate(0, 0, 7*i+2),
			PPK:         values[i],
			Price:       values[i],
		})
	}
	return obs
}

// laggedPair builds a dataset where B repeats A's price two weeks later.
func laggedPair(t *testing.T, n int, seed int64) *dataset.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	a := trendingWalk(rng, n)
	b := make([]float64, n)
	for i := 2; i < n; i++ {
		b[i] = a[i-2] + 0.05*rng.NormFloat64()
	}

	var obs []dataset.Observation
	obs = append(obs, weekly("Arroz 5kg", "Mercado A", a, 0, nil)...)
	obs = append(obs, weekly("Arroz 5kg", "Mercado B", b, 2, map[int]bool{50: true})...)
	obs = append(obs, weekly("Arroz 5kg", "Mercado C", a, 0, nil)...)
	obs = append(obs, weekly("Feijão 1kg", "Mercado A", a, 0, nil)...)
	return dataset.New(obs)
}

func TestAnalyzeDetectsLeader(t *testing.T) {
	ds := laggedPair(t, 150, 3)

	res, err := New(ds).Analyze("Arroz 5kg", "Mercado A", "Mercado B", DefaultOptions())
	require.NoError(t, err)

	t.Logf("A->B p=%.4g lag %d, B->A p=%.4g, ccf lag %d = %.3f",
		res.AToB.MinPValue, res.AToB.BestLag, res.BToA.MinPValue, res.CCF.StrongestLag, res.CCF.StrongestValue)

	assert.Equal(t, 148, res.PairedPeriods, "weeks before B's first price are dropped, the skipped week is filled")
	assert.Equal(t, monday.AddDate(0, 0, 14), res.Start)
	assert.Equal(t, monday.AddDate(0, 0, 7*149), res.End)

	assert.Equal(t, 1, res.StationarityA.Differences)
	assert.Equal(t, 1, res.StationarityB.Differences)
	assert.False(t, res.MixedOrders)
	assert.Equal(t, 147, res.Observations)

	assert.True(t, res.AToB.Significant)
	assert.False(t, res.BToA.Significant)
	assert.Equal(t, LeaderA, res.Leader)
	require.Len(t, res.AToB.Lags, 8)

	assert.Equal(t, 2, res.CCF.StrongestLag)
	assert.Greater(t, res.CCF.StrongestValue, 0.8)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, res.CCF.Lags)
}

func TestAnalyzeFlagsMixedOrders(t *testing.T) {
	// With this seed B's levels already reject a unit root at 5% while A's
	// do not, so only A is differenced.
	ds := laggedPair(t, 150, 7)

	res, err := New(ds).Analyze("Arroz 5kg", "Mercado A", "Mercado B", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, res.StationarityA.Differences)
	assert.Equal(t, 0, res.StationarityB.Differences)
	assert.True(t, res.StationarityB.Stationary)
	assert.True(t, res.MixedOrders)
	assert.Equal(t, 147, res.Observations)
}

func TestAnalyzeWithoutFrequencyIsWeekly(t *testing.T) {
	ds := laggedPair(t, 150, 3)

	res, err := New(ds).Analyze("Arroz 5kg", "Mercado A", "Mercado B", Options{MaxLag: 8, MaxDiffPasses: 2})
	require.NoError(t, err)
	assert.Equal(t, 148, res.PairedPeriods)
	assert.Equal(t, monday.AddDate(0, 0, 14), res.Start)
}

func TestAnalyzeIdenticalSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := trendingWalk(rng, 80)
	var obs []dataset.Observation
	obs = append(obs, weekly("Leite 1L", "Mercado A", a, 0, nil)...)
	obs = append(obs, weekly("Leite 1L", "Mercado B", a, 0, nil)...)

	res, err := New(dataset.New(obs)).Analyze("Leite 1L", "Mercado A", "Mercado B", DefaultOptions())
	require.NoError(t, err)

	assert.False(t, math.IsNaN(res.AToB.MinPValue))
	assert.False(t, math.IsNaN(res.BToA.MinPValue))
	for _, v := range res.CCF.Values {
		assert.Less(t, math.Abs(v), 0.5)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	ds := laggedPair(t, 150, 3)
	short := laggedPair(t, 25, 3)
	an := New(ds)

	tests := []struct {
		name    string
		an      *Analyzer
		product string
		a, b    string
		opts    Options
		want    error
	}{
		{"unknown product", an, "Café", "Mercado A", "Mercado B", DefaultOptions(), dataset.ErrEmptySelection},
		{"establishment without prices", an, "Feijão 1kg", "Mercado A", "Mercado B", DefaultOptions(), dataset.ErrEmptySelection},
		{"unknown establishment", an, "Arroz 5kg", "Mercado A", "Mercado Z", DefaultOptions(), dataset.ErrEmptySelection},
		{"invalid lag", an, "Arroz 5kg", "Mercado A", "Mercado B", Options{MaxLag: 0}, stats.ErrInvalidLag},
		{"short history", New(short), "Arroz 5kg", "Mercado A", "Mercado B", DefaultOptions(), ErrInsufficientPairedData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.an.Analyze(tt.product, tt.a, tt.b, tt.opts)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, Bidirectional, verdict(true, true))
	assert.Equal(t, LeaderA, verdict(true, false))
	assert.Equal(t, LeaderB, verdict(false, true))
	assert.Equal(t, NoLeader, verdict(false, false))
}
