package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/sartorproj/cestabasica/features"
	"github.com/sartorproj/cestabasica/forest"
	"github.com/sartorproj/cestabasica/timeseries"
)

var (
	// ErrInsufficientData is returned when the held-out window leaves no
	// training rows or is not positive.
	ErrInsufficientData = errors.New("forecast: not enough rows for the requested test window")

	// ErrInvalidHorizon is returned for a forecast horizon below one.
	ErrInvalidHorizon = errors.New("forecast: horizon must be at least 1")
)

// Model is a regressor trained on lag features.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
}

// Config configures an Engine.
type Config struct {
	Forest forest.Config
	// Objective is the MAPE below which the business objective is met.
	Objective float64
	// NewModel builds a fresh model per fit. Nil uses a random forest built
	// from Forest.
	NewModel func() Model
}

// DefaultConfig uses the default forest and a 10% MAPE objective.
func DefaultConfig() Config {
	return Config{Forest: forest.DefaultConfig(), Objective: 0.10}
}

// Engine trains and evaluates forecasting models on lagged feature tables.
// It holds no state between calls and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates an Engine.
func New(cfg Config) *Engine {
	if cfg.Objective <= 0 {
		cfg.Objective = 0.10
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) newModel() Model {
	if e.cfg.NewModel != nil {
		return e.cfg.NewModel()
	}
	return forest.New(e.cfg.Forest)
}

// Point is one row of a real-vs-predicted or future table.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Actual    *float64  `json:"actual,omitempty"`
	Predicted float64   `json:"predicted"`
}

// Evaluation is the outcome of a held-out evaluation.
type Evaluation struct {
	TrainSize    int       `json:"train_size"`
	TestSize     int       `json:"test_size"`
	TrainEnd     time.Time `json:"train_end"`
	Metrics      Metrics   `json:"metrics"`
	ObjectiveMet bool      `json:"objective_met"`
	Objective    float64   `json:"objective"`
	Rows         []Point   `json:"rows"`
}

// Evaluate holds out the last k rows, trains on the rest and scores the
// predictions for the held-out rows. Rows are never reordered.
func (e *Engine) Evaluate(tbl *features.Table, k int) (*Evaluation, error) {
	if k < 1 || k >= tbl.Len() {
		return nil, fmt.Errorf("%w: %d rows, test window %d", ErrInsufficientData, tbl.Len(), k)
	}
	train, test := tbl.Split(k)

	model := e.newModel()
	if err := model.Fit(train.Features, train.Targets); err != nil {
		return nil, fmt.Errorf("forecast: training: %w", err)
	}

	predicted := make([]float64, test.Len())
	rows := make([]Point, test.Len())
	for i, x := range test.Features {
		predicted[i] = model.Predict(x)
		actual := test.Targets[i]
		rows[i] = Point{Timestamp: test.Timestamps[i], Actual: &actual, Predicted: predicted[i]}
	}

	metrics := ComputeMetrics(test.Targets, predicted)
	return &Evaluation{
		TrainSize:    train.Len(),
		TestSize:     test.Len(),
		TrainEnd:     train.Timestamps[train.Len()-1],
		Metrics:      metrics,
		Objective:    e.cfg.Objective,
		ObjectiveMet: metrics.MAPE != nil && *metrics.MAPE < e.cfg.Objective,
		Rows:         rows,
	}, nil
}

// Forecast trains on the whole table and predicts h periods past its last
// row. Each prediction is fed back as the most recent lag for the next
// step, so errors compound with the horizon.
func (e *Engine) Forecast(tbl *features.Table, h int) ([]Point, error) {
	if h < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, h)
	}
	if tbl.Len() == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrInsufficientData)
	}

	model := e.newModel()
	if err := model.Fit(tbl.Features, tbl.Targets); err != nil {
		return nil, fmt.Errorf("forecast: training: %w", err)
	}
	return Recursive(model, tbl.NextFeatures(), tbl.Timestamps[tbl.Len()-1], tbl.Frequency, h), nil
}

// Recursive rolls a fitted model forward h steps from the lag vector lags,
// labelling step i with the i-th period after last.
func Recursive(model Model, lags []float64, last time.Time, freq timeseries.Frequency, h int) []Point {
	out := make([]Point, h)
	window := append([]float64(nil), lags...)
	ts := last
	for i := 0; i < h; i++ {
		y := model.Predict(window)
		ts = freq.Next(ts)
		out[i] = Point{Timestamp: ts, Predicted: y}
		window = features.Shift(window, y)
	}
	return out
}
