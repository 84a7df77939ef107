// Package forest implements a random forest regressor: an ensemble of CART
// regression trees, each grown on a bootstrap sample of the training rows,
// whose predictions are averaged.
//
//	model := forest.New(forest.DefaultConfig()) // 100 trees, seed 42
//	if err := model.Fit(X, y); err != nil { ... }
//	yhat := model.Predict(x)
//
// Trees are grown concurrently. Every tree draws from its own random source
// seeded from Config.Seed, so a fit is reproducible regardless of how the
// work is scheduled.
//
// Splits minimise the squared error of the two children. Trees grow until
// leaves are pure, hold fewer than MinSamplesSplit rows, or reach MaxDepth.
// A tree can only predict means of training targets, so forecasts never
// leave the range of the targets seen in training.
package forest
