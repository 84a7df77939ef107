// Package dataset holds the collected price observations and turns them into
// regular time series.
//
// A Dataset is loaded once, sorted by collection time and treated as
// read-only; every analysis builds its own series from it:
//
//	ds, err := dataset.LoadXLSX("dados_limpos_ICB.xlsx", nil)
//	series, err := dataset.BuildSeries(ds, dataset.InCategory("Vegetais"), timeseries.DefaultFrequency)
//
// # Sources
//
//   - LoadCSV / ReadCSV: header-based CSV export
//   - LoadXLSX / ReadXLSX: Excel workbook (first sheet by default)
//   - LoadMySQL: icb_data joined with products, brands and establishments
//
// Tabular sources use the cleaned export headers (Data_Coleta, Produto,
// Estabelecimento, Marca, Preco, Quantidade, PPK, Classe) and read every
// "Classe_*" boolean column as a category flag. When PPK is missing it is
// derived from price and quantity.
//
// Identifiers are strings. Sources with integer keys format them, so the
// analysis code never depends on the identifier kind.
package dataset
