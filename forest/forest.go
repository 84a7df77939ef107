package forest

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyTrainingSet is returned when Fit receives no rows.
	ErrEmptyTrainingSet = errors.New("forest: training set is empty")

	// ErrShapeMismatch is returned for ragged or mismatched inputs.
	ErrShapeMismatch = errors.New("forest: feature rows and targets do not match")
)

// Config holds forest hyperparameters.
type Config struct {
	Estimators      int   // number of trees (default 100)
	Seed            int64 // seed of the bootstrap and feature sampling (default 42)
	MaxDepth        int   // 0 means unlimited
	MinSamplesSplit int   // minimum rows to split a node (default 2)
	MinSamplesLeaf  int   // minimum rows in each child (default 1)
	MaxFeatures     int   // features tried per split, 0 means all
	Bootstrap       bool  // sample rows with replacement for each tree
	Workers         int   // concurrent tree builders, 0 means GOMAXPROCS
}

// DefaultConfig returns 100 bootstrapped, fully grown trees with seed 42.
func DefaultConfig() Config {
	return Config{
		Estimators:      100,
		Seed:            42,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
	}
}

// Regressor is a random forest regressor. A fitted Regressor is safe for
// concurrent prediction.
type Regressor struct {
	cfg       Config
	trees     []*tree
	nFeatures int
}

// New creates an unfitted regressor. Zero fields of cfg fall back to the
// defaults.
func New(cfg Config) *Regressor {
	def := DefaultConfig()
	if cfg.Estimators <= 0 {
		cfg.Estimators = def.Estimators
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = def.MinSamplesSplit
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = def.MinSamplesLeaf
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Regressor{cfg: cfg}
}

// Fit grows the forest on the rows of X and targets y, replacing any
// previous fit.
func (r *Regressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, len(X), len(y))
	}
	nFeatures := len(X[0])
	for i, row := range X {
		if len(row) != nFeatures {
			return fmt.Errorf("%w: row %d has %d features, expected %d", ErrShapeMismatch, i, len(row), nFeatures)
		}
	}

	master := rand.New(rand.NewSource(r.cfg.Seed))
	seeds := make([]int64, r.cfg.Estimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*tree, r.cfg.Estimators)
	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i := range trees {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[i]))
			trees[i] = grow(X, y, r.sample(rng, len(y)), r.cfg, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.trees = trees
	r.nFeatures = nFeatures
	return nil
}

func (r *Regressor) sample(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		if r.cfg.Bootstrap {
			idx[i] = rng.Intn(n)
		} else {
			idx[i] = i
		}
	}
	return idx
}

// Fitted reports whether Fit has completed.
func (r *Regressor) Fitted() bool {
	return len(r.trees) > 0
}

// Predict returns the mean prediction of all trees. It panics if the
// regressor is not fitted or x has the wrong width.
func (r *Regressor) Predict(x []float64) float64 {
	if !r.Fitted() {
		panic("forest: Predict called before Fit")
	}
	if len(x) != r.nFeatures {
		panic(fmt.Sprintf("forest: got %d features, model was fitted with %d", len(x), r.nFeatures))
	}
	sum := 0.0
	for _, t := range r.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(r.trees))
}

// PredictBatch predicts every row of X.
func (r *Regressor) PredictBatch(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = r.Predict(x)
	}
	return out
}
