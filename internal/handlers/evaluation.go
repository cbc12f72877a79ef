package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/internal/evaluation"
	"github.com/rateworks/recsys/internal/metrics"
	"github.com/rateworks/recsys/internal/recommend"
	"github.com/rateworks/recsys/internal/storage"
	"github.com/rateworks/recsys/pkg/models"
)

type EvaluationHandler struct {
	cfg         *config.Config
	logger      *logrus.Logger
	store       *storage.SnapshotStore
	recommender *recommend.Recommender
	harness     *evaluation.Harness
	collector   *metrics.Collector
	validator   *validator.Validate
}

func NewEvaluationHandler(
	cfg *config.Config,
	logger *logrus.Logger,
	store *storage.SnapshotStore,
	recommender *recommend.Recommender,
	harness *evaluation.Harness,
	collector *metrics.Collector,
) *EvaluationHandler {
	return &EvaluationHandler{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		recommender: recommender,
		harness:     harness,
		collector:   collector,
		validator:   validator.New(),
	}
}

// Run executes a full offline evaluation: a seeded per-user train/test
// split, ranking metrics at every requested K, and rating-prediction
// error over the held-out records. Request fields left at their zero
// value fall back to the configured defaults.
func (h *EvaluationHandler) Run(c *gin.Context) {
	request := models.EvaluationRequest{
		TestSize:           h.cfg.Evaluation.TestSize,
		MinRatingsPerUser:  h.cfg.Evaluation.MinRatingsPerUser,
		KValues:            h.cfg.Evaluation.KValues,
		RelevanceThreshold: h.cfg.Evaluation.RelevanceThreshold,
		Seed:               h.cfg.Evaluation.Seed,
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_REQUEST_BODY",
					"message": "Invalid request body format",
				},
			})
			return
		}
	}

	if err := h.validator.Struct(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	split := evaluation.SplitTrainTest(h.store.Snapshot(), request.TestSize, request.MinRatingsPerUser, request.Seed)
	if len(split.Train) == 0 || len(split.Test) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INSUFFICIENT_DATA",
				"message": "Not enough ratings to build a train/test split",
			},
		})
		return
	}

	opts, err := h.recommender.DefaultOptions()
	if err != nil {
		h.logger.WithError(err).Error("Invalid recommendation configuration")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INVALID_CONFIGURATION",
				"message": "Recommendation configuration is invalid",
			},
		})
		return
	}

	// Evaluation scores train subsets, never the live table, so the
	// cache layer must stay out of the loop.
	recommender := h.recommender.Uncached()

	recommendFn := func(ctx context.Context, train []models.RatingRecord, userID int64, n int) ([]models.ScoredProduct, error) {
		callOpts := opts
		callOpts.Count = n
		result, err := recommender.RecommendForUser(ctx, train, userID, callOpts)
		if err != nil {
			return nil, err
		}
		if result.ColdStart {
			// Popularity fallbacks say nothing about the model's
			// ranking quality, so they do not count as evaluated.
			return nil, nil
		}
		return result.Products, nil
	}

	ranking, err := h.harness.EvaluateRecommendations(
		c.Request.Context(), split.Train, split.Test, recommendFn,
		request.KValues, request.RelevanceThreshold)
	if err != nil {
		h.logger.WithError(err).Error("Recommendation evaluation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "EVALUATION_FAILED",
				"message": "Evaluation run failed",
			},
		})
		return
	}

	prediction, err := h.harness.EvaluateRatingPrediction(
		c.Request.Context(), split.Train, split.Test, recommender.PredictRating)
	if err != nil {
		h.logger.WithError(err).Error("Rating prediction evaluation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "EVALUATION_FAILED",
				"message": "Evaluation run failed",
			},
		})
		return
	}

	h.collector.ObserveEvaluationRun()

	c.JSON(http.StatusOK, models.EvaluationResponse{
		RunID:      uuid.New(),
		Ranking:    ranking,
		Prediction: prediction,
		TrainSize:  len(split.Train),
		TestSize:   len(split.Test),
	})
}
