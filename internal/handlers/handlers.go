package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/internal/evaluation"
	"github.com/rateworks/recsys/internal/metrics"
	"github.com/rateworks/recsys/internal/recommend"
	"github.com/rateworks/recsys/internal/storage"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Products       *ProductsHandler
	Stats          *StatsHandler
	Evaluation     *EvaluationHandler
}

func New(
	cfg *config.Config,
	logger *logrus.Logger,
	store *storage.SnapshotStore,
	recommender *recommend.Recommender,
	harness *evaluation.Harness,
	collector *metrics.Collector,
) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, store),
		Recommendation: NewRecommendationHandler(cfg, logger, store, recommender, collector),
		Products:       NewProductsHandler(cfg, logger, store),
		Stats:          NewStatsHandler(logger, store),
		Evaluation:     NewEvaluationHandler(cfg, logger, store, recommender, harness, collector),
	}
}
