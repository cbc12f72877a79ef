package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/internal/metrics"
	"github.com/rateworks/recsys/internal/recommend"
	"github.com/rateworks/recsys/internal/storage"
	"github.com/rateworks/recsys/pkg/models"
)

type RecommendationHandler struct {
	cfg         *config.Config
	logger      *logrus.Logger
	store       *storage.SnapshotStore
	recommender *recommend.Recommender
	collector   *metrics.Collector
}

func NewRecommendationHandler(
	cfg *config.Config,
	logger *logrus.Logger,
	store *storage.SnapshotStore,
	recommender *recommend.Recommender,
	collector *metrics.Collector,
) *RecommendationHandler {
	return &RecommendationHandler{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		recommender: recommender,
		collector:   collector,
	}
}

func (h *RecommendationHandler) Get(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "User ID must be a non-negative integer",
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

	if countStr := c.Query("count"); countStr != "" {
		count, err := strconv.Atoi(countStr)
		if err != nil || count < 1 || count > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_COUNT",
					"message": "Count must be an integer between 1 and 100",
				},
			})
			return
		}
		opts.Count = count
	}

	if normStr := c.Query("use_normalized"); normStr != "" {
		useNormalized, err := strconv.ParseBool(normStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_PARAMETER",
					"message": "use_normalized must be a boolean",
				},
			})
			return
		}
		opts.UseNormalized = useNormalized
	}

	if methodStr := c.Query("method"); methodStr != "" {
		method, err := recommend.ParseNormalizationMethod(methodStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_METHOD",
					"message": "Method must be one of mean_center, z_score, min_max",
				},
			})
			return
		}
		opts.Method = method
	}

	start := time.Now()
	result, err := h.recommender.RecommendForUser(c.Request.Context(), h.store.Snapshot(), userID, opts)
	if err != nil {
		if errors.Is(err, models.ErrUnknownUser) {
			h.collector.ObserveRecommendation("not_found", time.Since(start), false)
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User has no ratings",
				},
			})
			return
		}

		h.logger.WithError(err).WithField("user_id", userID).
			Error("Failed to generate recommendations")
		h.collector.ObserveRecommendation("error", time.Since(start), false)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_GENERATION_FAILED",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	h.collector.ObserveRecommendation("ok", time.Since(start), result.ColdStart)
	c.JSON(http.StatusOK, result)
}
