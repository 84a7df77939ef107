// Package cestabasica analyzes the prices of a basic food basket collected
// weekly across retailers.
//
// It answers two questions. First, how will the mean price per kilogram
// (PPK) of each product category evolve over the coming weeks? Second, do
// one establishment's price changes for a product show up later at
// another?
//
// # Forecasting
//
// Observations are aggregated into a weekly PPK series, framed as a lag
// feature table and modelled with a random forest. The model is scored on
// a held-out tail window and then rolled forward recursively:
//
//	ds, _ := dataset.LoadCSV("icb_data.csv", nil)
//	an := analysis.New(ds)
//	report := an.CategoryForecast(ctx, "Vegetais", analysis.DefaultForecastParams())
//	if report.Error != nil {
//		// report.Error.Kind tells why, e.g. EmptySelection
//	}
//
// # Lead-lag
//
// Two establishments' series for a product are paired, made stationary
// with the augmented Dickey-Fuller test and differencing, and tested for
// Granger causality in both directions. Cross-correlation locates the
// delay:
//
//	r := an.LeadLag(ctx, "Arroz 5kg", "Mercado A", "Mercado B", analysis.DefaultLeadLagParams())
//	fmt.Println(r.Leader, r.CCF.StrongestLag)
//
// # Packages
//
//   - timeseries: series, calendar frequencies, resampling and CSV export
//   - dataset: observations, selection predicates and CSV/XLSX/MySQL loaders
//   - features: lag feature tables
//   - stats: ADF, differencing policy, Granger causality, cross-correlation
//   - forest: random forest regressor
//   - forecast: held-out evaluation, recursive forecasting and error metrics
//   - leadlag: lead-lag analysis between two establishments
//   - analysis: entry points, error kinds, category batches and caching
//   - cache, config, logging, api: Redis cache, viper config, logrus, gin
//
// The demo and cmd/server binaries wire these together from a config.yaml.
package cestabasica
