package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/explore"
	"github.com/rateworks/recsys/internal/storage"
	"github.com/rateworks/recsys/pkg/models"
)

type StatsHandler struct {
	logger *logrus.Logger
	store  *storage.SnapshotStore
}

func NewStatsHandler(logger *logrus.Logger, store *storage.SnapshotStore) *StatsHandler {
	return &StatsHandler{
		logger: logger,
		store:  store,
	}
}

func (h *StatsHandler) Get(c *gin.Context) {
	topN := 10
	if topNStr := c.Query("top_n"); topNStr != "" {
		parsed, err := strconv.Atoi(topNStr)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_TOP_N",
					"message": "top_n must be an integer between 1 and 100",
				},
			})
			return
		}
		topN = parsed
	}

	stats, err := explore.DatasetStats(h.store.Snapshot(), topN)
	if err != nil {
		if errors.Is(err, models.ErrEmptyTable) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "EMPTY_RATING_TABLE",
					"message": "No ratings are loaded",
				},
			})
			return
		}

		h.logger.WithError(err).Error("Failed to compute dataset stats")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "STATS_FAILED",
				"message": "Failed to compute dataset statistics",
			},
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
