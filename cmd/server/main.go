// Command server serves forecasts and lead-lag analyses over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sartorproj/cestabasica/analysis"
	"github.com/sartorproj/cestabasica/api"
	"github.com/sartorproj/cestabasica/cache"
	"github.com/sartorproj/cestabasica/config"
	"github.com/sartorproj/cestabasica/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("loading configuration")
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	log := logger.WithField("app", cfg.App.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := cfg.LoadDataset(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("loading dataset")
	}

	opts := []analysis.Option{
		analysis.WithLogger(log),
		analysis.WithForecastConfig(cfg.ForecastConfig()),
		analysis.WithBatchParallelism(len(cfg.Analysis.Categories)),
	}
	if cfg.Redis.Enabled {
		rc, err := cache.Connect(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL,
		}, log)
		if err != nil {
			log.WithError(err).Warn("report cache disabled")
		} else {
			defer rc.Close()
			opts = append(opts, analysis.WithCache(rc))
		}
	}
	an := analysis.New(ds, opts...)

	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(api.NewHandler(an, api.Defaults{
		Forecast:   cfg.ForecastParams(),
		LeadLag:    cfg.LeadLagParams(),
		Categories: cfg.Analysis.Categories,
	}, log))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
