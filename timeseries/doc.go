// Package timeseries provides the regular time series used throughout the
// price analysis: a Series holds one value per period, labelled by the period
// start, with NaN marking periods that have no observation yet.
//
// # Frequencies
//
// Periods are defined by a Frequency. The default is weekly, starting on
// Monday; daily and month-start periods are also supported:
//
//	freq, err := timeseries.ParseFrequency("W-MON")
//	start := freq.Truncate(collectedAt) // Monday 00:00 UTC of that week
//	next := freq.Next(start)
//
// # Resampling
//
// Raw points are grouped into periods and averaged. Periods without points
// are undefined until they are forward-filled:
//
//	series := timeseries.Resample(points, timeseries.DefaultFrequency)
//	series = series.ForwardFill().DropUndefined()
//
// Only leading periods can remain undefined after ForwardFill, so dropping
// them leaves a series without interior gaps.
//
// # Transformations
//
//	diff := series.Diff()     // value[t] - value[t-1], first period dropped
//	diff2 := series.DiffN(2)  // second difference
//	subset := series.Slice(10, 50)
//	a, b := timeseries.Align(x, y) // periods present in both
//
// # Writing
//
// SaveCSV and WriteCSV export a series in the ds,y layout:
//
//	err := timeseries.SaveCSV(series, "category.csv", nil)
package timeseries
