package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BatchReport collects the forecasts of a batch run, in request order.
type BatchReport struct {
	BatchID       string            `json:"batch_id"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
	Params        ForecastParams    `json:"params"`
	Reports       []*ForecastReport `json:"reports"`
	Successful    int               `json:"successful"`
	Failed        int               `json:"failed"`
	ObjectivesMet int               `json:"objectives_met"`
}

// ForecastCategories forecasts every category. A failing category is
// recorded in its report and does not stop the others; cancelling ctx
// marks the categories not yet started as failed.
func (a *Analyzer) ForecastCategories(ctx context.Context, categories []string, p ForecastParams) *BatchReport {
	batch := &BatchReport{
		BatchID:   uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Params:    p,
		Reports:   make([]*ForecastReport, len(categories)),
	}
	log := a.log.WithFields(logrus.Fields{"batch_id": batch.BatchID, "categories": len(categories)})
	log.Info("batch started")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.parallel, 1))
	for i, category := range categories {
		i, category := i, category
		g.Go(func() error {
			batch.Reports[i] = a.CategoryForecast(gctx, category, p)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range batch.Reports {
		switch {
		case !r.OK():
			batch.Failed++
		case r.ObjectiveMet():
			batch.Successful++
			batch.ObjectivesMet++
		default:
			batch.Successful++
		}
	}
	batch.FinishedAt = time.Now().UTC()

	log.WithFields(logrus.Fields{
		"successful":     batch.Successful,
		"failed":         batch.Failed,
		"objectives_met": batch.ObjectivesMet,
		"elapsed":        batch.FinishedAt.Sub(batch.StartedAt).String(),
	}).Info("batch finished")
	return batch
}
