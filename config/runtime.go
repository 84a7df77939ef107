package config

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sartorproj/cestabasica/analysis"
	"github.com/sartorproj/cestabasica/dataset"
	"github.com/sartorproj/cestabasica/forecast"
	"github.com/sartorproj/cestabasica/forest"
)

// LoadDataset reads the observations named by the data section.
func (c *Config) LoadDataset(ctx context.Context, log *logrus.Entry) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	switch c.Data.Source {
	case "csv":
		ds, err = dataset.LoadCSV(c.Data.Path, dataset.DefaultCSVOptions())
	case "xlsx":
		opts := dataset.DefaultXLSXOptions()
		opts.Sheet = c.Data.Sheet
		ds, err = dataset.LoadXLSX(c.Data.Path, opts)
	case "mysql":
		db, openErr := dataset.OpenMySQL(c.Database.MySQL())
		if openErr != nil {
			return nil, openErr
		}
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			defer sqlDB.Close()
		}
		ds, err = dataset.LoadMySQL(ctx, db, dataset.MySQLOptions{ByID: c.Data.ByID})
	default:
		return nil, fmt.Errorf("config: unknown data source %q", c.Data.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s dataset: %w", c.Data.Source, err)
	}

	log.WithFields(logrus.Fields{
		"source":         c.Data.Source,
		"observations":   ds.Len(),
		"products":       len(ds.Products()),
		"establishments": len(ds.Establishments()),
		"fingerprint":    ds.Fingerprint(),
	}).Info("dataset loaded")
	return ds, nil
}

// ForecastParams returns the default forecast parameters. The frequency
// was checked by Validate.
func (c *Config) ForecastParams() analysis.ForecastParams {
	freq, _ := c.Analysis.ParsedFrequency()
	return analysis.ForecastParams{
		Frequency:  freq,
		NLags:      c.Analysis.NLags,
		TestWindow: c.Analysis.TestWindow,
		Horizon:    c.Analysis.Horizon,
	}
}

// LeadLagParams returns the default lead-lag parameters.
func (c *Config) LeadLagParams() analysis.LeadLagParams {
	freq, _ := c.Analysis.ParsedFrequency()
	return analysis.LeadLagParams{
		Frequency:     freq,
		MaxLag:        c.Analysis.MaxLag,
		MaxDiffPasses: c.Analysis.MaxDiffPasses,
		Alpha:         c.Analysis.Alpha,
	}
}

// ForecastConfig returns the forecasting engine configuration.
func (c *Config) ForecastConfig() forecast.Config {
	fc := forest.DefaultConfig()
	fc.Estimators = c.Analysis.Estimators
	fc.Seed = c.Analysis.Seed
	fc.Workers = c.Analysis.Workers
	return forecast.Config{Forest: fc, Objective: c.Analysis.MAPEObjective}
}
