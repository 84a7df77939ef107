package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sartorproj/cestabasica/dataset"
	"github.com/sartorproj/cestabasica/features"
	"github.com/sartorproj/cestabasica/forecast"
	"github.com/sartorproj/cestabasica/leadlag"
	"github.com/sartorproj/cestabasica/timeseries"
)

// ReportCache stores finished reports. Implementations must be safe for
// concurrent use.
type ReportCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// Analyzer runs forecasts and lead-lag analyses over one loaded dataset.
// It is safe for concurrent use.
type Analyzer struct {
	ds       *dataset.Dataset
	engine   *forecast.Engine
	leadlag  *leadlag.Analyzer
	cfgKey   string
	log      *logrus.Entry
	cache    ReportCache
	parallel int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(log *logrus.Entry) Option {
	return func(a *Analyzer) { a.log = log }
}

// WithCache enables report caching.
func WithCache(c ReportCache) Option {
	return func(a *Analyzer) { a.cache = c }
}

// WithForecastConfig replaces the forecasting engine configuration.
func WithForecastConfig(cfg forecast.Config) Option {
	return func(a *Analyzer) {
		a.engine = forecast.New(cfg)
		a.cfgKey = configKey(cfg)
	}
}

// configKey identifies the engine configuration in cache keys. Every forest
// field that changes predictions is included; Workers is not. A custom model
// cannot be identified, so its key is empty and its reports are not cached.
func configKey(cfg forecast.Config) string {
	if cfg.NewModel != nil {
		return ""
	}
	f := cfg.Forest
	return fmt.Sprintf("rf%d-s%d-d%d-mss%d-msl%d-mf%d-b%t-o%g",
		f.Estimators, f.Seed, f.MaxDepth, f.MinSamplesSplit, f.MinSamplesLeaf, f.MaxFeatures, f.Bootstrap, cfg.Objective)
}

// WithBatchParallelism bounds how many categories a batch forecasts at
// once. Zero or less means one at a time.
func WithBatchParallelism(n int) Option {
	return func(a *Analyzer) { a.parallel = n }
}

// New returns an Analyzer over ds.
func New(ds *dataset.Dataset, opts ...Option) *Analyzer {
	a := &Analyzer{
		ds:       ds,
		leadlag:  leadlag.New(ds),
		log:      logrus.NewEntry(logrus.StandardLogger()),
		parallel: 1,
	}
	WithForecastConfig(forecast.DefaultConfig())(a)
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithField("component", "analysis")
	return a
}

// Dataset returns the dataset the analyzer reads.
func (a *Analyzer) Dataset() *dataset.Dataset {
	return a.ds
}

// CategoryForecast evaluates and forecasts the mean PPK of a category.
func (a *Analyzer) CategoryForecast(ctx context.Context, category string, p ForecastParams) *ForecastReport {
	name := dataset.NormalizeCategory(category)
	return a.forecastReport(ctx, ScopeCategory, name, dataset.InCategory(name), p)
}

// ProductForecast evaluates and forecasts the mean PPK of a product over
// every establishment selling it.
func (a *Analyzer) ProductForecast(ctx context.Context, productID string, p ForecastParams) *ForecastReport {
	return a.forecastReport(ctx, ScopeProduct, productID, dataset.ForProduct(productID), p)
}

func (a *Analyzer) forecastReport(ctx context.Context, scope Scope, target string, pred dataset.Predicate, p ForecastParams) *ForecastReport {
	log := a.log.WithFields(logrus.Fields{"scope": scope, "target": target})
	key := fmt.Sprintf("forecast:%s:%s:%s:%s:%s", a.ds.Fingerprint(), a.cfgKey, scope, target, p.key())

	cacheable := a.cfgKey != ""
	var cached ForecastReport
	if cacheable && a.lookup(ctx, key, &cached, log) {
		cached.Cached = true
		return &cached
	}

	report := &ForecastReport{Scope: scope, Target: target, Params: p}
	if err := ctx.Err(); err != nil {
		report.Error = errorInfo(err)
		return report
	}

	start := time.Now()
	err := guard(func() error {
		series, err := dataset.BuildSeries(a.ds, pred, p.Frequency)
		if err != nil {
			return err
		}
		tbl, err := features.Lagged(series, p.NLags, p.Frequency)
		if err != nil {
			return err
		}
		ev, err := a.engine.Evaluate(tbl, p.TestWindow)
		if err != nil {
			return err
		}
		future, err := a.engine.Forecast(tbl, p.Horizon)
		if err != nil {
			return err
		}
		report.Series = summarize(series)
		report.Evaluation = ev
		report.Future = future
		return nil
	})
	if err != nil {
		report = &ForecastReport{Scope: scope, Target: target, Params: p, Error: errorInfo(err)}
		log.WithField("kind", report.Error.Kind).WithError(err).Warn("forecast failed")
		return report
	}

	fields := logrus.Fields{
		"periods":       report.Series.Periods,
		"rmse":          report.Evaluation.Metrics.RMSE,
		"objective_met": report.Evaluation.ObjectiveMet,
		"elapsed":       time.Since(start).String(),
	}
	if m := report.Evaluation.Metrics.MAPE; m != nil {
		fields["mape"] = *m
	}
	log.WithFields(fields).Info("forecast complete")
	if cacheable {
		a.store(ctx, key, report, log)
	}
	return report
}

// LeadLag tests whether entityA's prices for productID lead entityB's.
// Finding no causality is a successful report.
func (a *Analyzer) LeadLag(ctx context.Context, productID, entityA, entityB string, p LeadLagParams) *LeadLagReport {
	log := a.log.WithFields(logrus.Fields{"product": productID, "a": entityA, "b": entityB})
	key := fmt.Sprintf("leadlag:%s:%s:%s:%s:%s", a.ds.Fingerprint(), productID, entityA, entityB, p.key())

	var cached LeadLagReport
	if a.lookup(ctx, key, &cached, log) {
		cached.Cached = true
		return &cached
	}

	failed := func(err error) *LeadLagReport {
		r := &LeadLagReport{Product: productID, EntityA: entityA, EntityB: entityB, Params: p, Error: errorInfo(err)}
		log.WithField("kind", r.Error.Kind).WithError(err).Warn("lead-lag analysis failed")
		return r
	}
	if err := ctx.Err(); err != nil {
		return failed(err)
	}

	var res *leadlag.Result
	err := guard(func() error {
		var err error
		res, err = a.leadlag.Analyze(productID, entityA, entityB, leadlag.Options{
			MaxLag:        p.MaxLag,
			Frequency:     p.Frequency,
			MaxDiffPasses: p.MaxDiffPasses,
			Alpha:         p.Alpha,
		})
		return err
	})
	if err != nil {
		return failed(err)
	}

	report := leadLagReport(res, p)
	if res.MixedOrders {
		log.WithFields(logrus.Fields{
			"differences_a": res.StationarityA.Differences,
			"differences_b": res.StationarityB.Differences,
		}).Warn("establishments stationarized with different differencing orders")
	}
	log.WithFields(logrus.Fields{
		"leader":   res.Leader,
		"p_a_to_b": res.AToB.MinPValue,
		"p_b_to_a": res.BToA.MinPValue,
		"ccf_lag":  res.CCF.StrongestLag,
	}).Info("lead-lag analysis complete")
	a.store(ctx, key, report, log)
	return report
}

func (a *Analyzer) lookup(ctx context.Context, key string, dst any, log *logrus.Entry) bool {
	if a.cache == nil {
		return false
	}
	hit, err := a.cache.Get(ctx, key, dst)
	if err != nil {
		log.WithError(err).Warn("report cache read failed")
		return false
	}
	if hit {
		log.Debug("report served from cache")
	}
	return hit
}

func (a *Analyzer) store(ctx context.Context, key string, v any, log *logrus.Entry) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, key, v); err != nil {
		log.WithError(err).Warn("report cache write failed")
	}
}

// Series builds the series a forecast of scope and target is trained on.
func (a *Analyzer) Series(scope Scope, target string, freq timeseries.Frequency) (*timeseries.Series, error) {
	pred := dataset.ForProduct(target)
	if scope == ScopeCategory {
		pred = dataset.InCategory(target)
	}
	return dataset.BuildSeries(a.ds, pred, freq)
}
