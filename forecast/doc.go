// Package forecast trains regression models on lag features, scores them
// on a held-out tail window and rolls them forward to forecast future
// periods.
//
// # Evaluation
//
// The last k rows of a lagged table are held out, the model is trained on
// the rows before them and MAE, MSE, RMSE and MAPE are computed on the
// held-out rows:
//
//	eng := forecast.New(forecast.DefaultConfig())
//	ev, err := eng.Evaluate(tbl, 12)
//	if ev.ObjectiveMet { ... } // MAPE < 10%
//
// MAPE is undefined when an actual value is exactly zero; Metrics.MAPE is
// then nil and the objective is not met.
//
// # Forecasting
//
// Forecast retrains on the whole table and predicts recursively: each
// prediction becomes lag 1 of the next step.
//
//	future, err := eng.Forecast(tbl, 12)
//
// Predictions are not clamped. With the default random forest they stay
// within the range of the training targets.
package forecast
