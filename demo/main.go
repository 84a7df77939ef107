// Package main runs the category forecast batch over the configured
// dataset and exports the results.
//
// It writes results_<batch>.json with every report, predictions_<batch>.csv
// with the real-vs-predicted and future rows of each category, and one
// series_<category>.csv per category with the weekly PPK it was trained on.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sartorproj/cestabasica/analysis"
	"github.com/sartorproj/cestabasica/config"
	"github.com/sartorproj/cestabasica/logging"
	"github.com/sartorproj/cestabasica/timeseries"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("loading configuration")
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format).WithField("app", cfg.App.Name)

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("Cesta Básica - weekly PPK forecast per category")
	fmt.Println(strings.Repeat("=", 80))

	ctx := context.Background()
	ds, err := cfg.LoadDataset(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("loading dataset")
	}
	fmt.Printf("\nLoaded %d observations, %d products, %d establishments\n",
		ds.Len(), len(ds.Products()), len(ds.Establishments()))

	an := analysis.New(ds,
		analysis.WithLogger(log),
		analysis.WithForecastConfig(cfg.ForecastConfig()),
		analysis.WithBatchParallelism(len(cfg.Analysis.Categories)),
	)
	params := cfg.ForecastParams()
	batch := an.ForecastCategories(ctx, cfg.Analysis.Categories, params)

	for i, r := range batch.Reports {
		fmt.Printf("\n%s\n[%d/%d] %s\n%s\n", strings.Repeat("=", 80), i+1, len(batch.Reports), r.Target, strings.Repeat("=", 80))
		printReport(r)
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		log.WithError(err).Fatal("creating output directory")
	}
	fmt.Printf("\n%s\nEXPORTING RESULTS\n%s\n", strings.Repeat("=", 80), strings.Repeat("=", 80))

	resultsPath := filepath.Join(cfg.Output.Dir, "results_"+batch.BatchID+".json")
	if err := writeJSON(resultsPath, batch); err != nil {
		log.WithError(err).Fatal("writing results")
	}
	fmt.Printf("Results:     %s\n", resultsPath)

	predictionsPath := filepath.Join(cfg.Output.Dir, "predictions_"+batch.BatchID+".csv")
	if err := writePredictions(predictionsPath, batch); err != nil {
		log.WithError(err).Fatal("writing predictions")
	}
	fmt.Printf("Predictions: %s\n", predictionsPath)

	for _, r := range batch.Reports {
		if !r.OK() {
			continue
		}
		series, err := an.Series(r.Scope, r.Target, params.Frequency)
		if err != nil {
			log.WithError(err).WithField("category", r.Target).Warn("exporting series")
			continue
		}
		path := filepath.Join(cfg.Output.Dir, "series_"+slug(r.Target)+".csv")
		if err := timeseries.SaveCSV(series, path, &timeseries.CSVOptions{
			DateColumn: "semana", ValueColumn: "ppk", DateFormat: "2006-01-02", Delimiter: ',', Precision: 4,
		}); err != nil {
			log.WithError(err).WithField("category", r.Target).Warn("exporting series")
			continue
		}
		fmt.Printf("Series:      %s\n", path)
	}

	fmt.Printf("\n%s\nSUMMARY batch %s\n", strings.Repeat("=", 80), batch.BatchID)
	fmt.Printf("   Successful: %d, failed: %d, MAPE objective met: %d/%d\n",
		batch.Successful, batch.Failed, batch.ObjectivesMet, len(batch.Reports))
	fmt.Printf("   Elapsed: %s\n", batch.FinishedAt.Sub(batch.StartedAt))
	fmt.Println(strings.Repeat("=", 80))
}

func printReport(r *analysis.ForecastReport) {
	if !r.OK() {
		fmt.Printf("   Error (%s): %s\n", r.Error.Kind, r.Error.Message)
		return
	}
	s, ev := r.Series, r.Evaluation
	fmt.Printf("   %d weeks (%s to %s), PPK %.2f to %.2f\n",
		s.Periods, s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), s.Min, s.Max)
	fmt.Printf("   Train: %d, Test: %d\n", ev.TrainSize, ev.TestSize)

	mape := "undefined"
	if ev.Metrics.MAPE != nil {
		mape = fmt.Sprintf("%.2f%%", ev.Metrics.MAPEPercent())
	}
	status := "not met"
	if ev.ObjectiveMet {
		status = "met"
	}
	fmt.Printf("   MAE=%.4f RMSE=%.4f MAPE=%s (objective < %.0f%% %s)\n",
		ev.Metrics.MAE, ev.Metrics.RMSE, mape, ev.Objective*100, status)
	if len(r.Future) > 0 {
		fmt.Printf("   Next week (%s): R$ %.2f\n", r.Future[0].Timestamp.Format("2006-01-02"), r.Future[0].Predicted)
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writePredictions writes one row per evaluated or forecast period.
func writePredictions(path string, batch *analysis.BatchReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"batch_id", "category", "week", "kind", "actual", "predicted"}); err != nil {
		return err
	}
	for _, r := range batch.Reports {
		if !r.OK() {
			continue
		}
		for _, p := range r.Evaluation.Rows {
			actual := ""
			if p.Actual != nil {
				actual = strconv.FormatFloat(*p.Actual, 'f', 4, 64)
			}
			if err := w.Write([]string{batch.BatchID, r.Target, p.Timestamp.Format("2006-01-02"), "test", actual, strconv.FormatFloat(p.Predicted, 'f', 4, 64)}); err != nil {
				return err
			}
		}
		for _, p := range r.Future {
			if err := w.Write([]string{batch.BatchID, r.Target, p.Timestamp.Format("2006-01-02"), "forecast", "", strconv.FormatFloat(p.Predicted, 'f', 4, 64)}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func slug(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '&' || r == '/':
			return '_'
		default:
			return r
		}
	}, strings.ToLower(s))
}
