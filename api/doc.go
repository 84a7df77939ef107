// Package api exposes the analysis entry points over HTTP with gin.
//
// Routes:
//
//	GET  /health
//	GET  /api/v1/categories
//	GET  /api/v1/forecast/category/:category
//	GET  /api/v1/forecast/product/:product
//	POST /api/v1/forecast/batch
//	GET  /api/v1/leadlag/:product?a=...&b=...
//
// Forecast routes accept freq, n_lags, test_window and horizon query
// parameters; the lead-lag route accepts freq, max_lag, max_diff_passes and
// alpha. Malformed parameters are answered with 400. Analysis failures are
// returned as a report carrying an error kind, with 422, or 500 for
// internal errors.
package api
