// Package stats provides the statistical tests behind the price analysis:
// unit-root testing and differencing, Granger causality and
// cross-correlation.
//
// # Stationarity
//
// ADF runs the Augmented Dickey-Fuller test with a constant term.
// H0: the series has a unit root (non-stationary).
//
//	adf, err := stats.ADF(series, 0) // lag order chosen by AIC
//	fmt.Printf("ADF: stat=%.4f, p=%.4f\n", adf.Statistic, adf.PValue)
//
// Stationarize applies the differencing policy: test, and while p > alpha
// difference once more, up to MaxDiffPasses times:
//
//	res, err := stats.Stationarize(series, stats.DefaultStationarizeOptions())
//	fmt.Println(res.Verdict)
//	// original series p=0.6123; after 1 differencing pass(es) p=0.0001: stationary after 1 differencing pass(es)
//
// # Granger causality
//
// Granger compares restricted and unrestricted autoregressions with an
// F-test at every lag order and keeps the smallest p-value:
//
//	res, err := stats.Granger(a, b, 8, 0.05) // does a help predict b?
//	if res.Significant { ... }
//
// # Cross-correlation
//
// CrossCorrelate returns the adjusted cross-correlation at lags 1..maxLag and
// the lag with the largest absolute value:
//
//	cc, err := stats.CrossCorrelate(a, b, 8)
//	fmt.Println(cc.StrongestLag, cc.StrongestValue)
//
// Failures inside a test (singular regressions, too few observations) are
// reported as errors wrapping ErrTestFailed.
package stats
