package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/internal/recommend"
	"github.com/rateworks/recsys/internal/storage"
	"github.com/rateworks/recsys/internal/trending"
)

type ProductsHandler struct {
	cfg    *config.Config
	logger *logrus.Logger
	store  *storage.SnapshotStore
}

func NewProductsHandler(cfg *config.Config, logger *logrus.Logger, store *storage.SnapshotStore) *ProductsHandler {
	return &ProductsHandler{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// Popular returns the globally top-rated products, ranked by mean rating
// over the whole table.
func (h *ProductsHandler) Popular(c *gin.Context) {
	count, ok := h.parseCount(c)
	if !ok {
		return
	}

	minRatings := h.cfg.Recommendation.PopularityMinRatings
	if minStr := c.Query("min_ratings"); minStr != "" {
		parsed, err := strconv.Atoi(minStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_MIN_RATINGS",
					"message": "min_ratings must be a positive integer",
				},
			})
			return
		}
		minRatings = parsed
	}

	products := recommend.PopularItems(h.store.Snapshot(), count, minRatings)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// Trending returns the top-rated products inside a recency window.
func (h *ProductsHandler) Trending(c *gin.Context) {
	count, ok := h.parseCount(c)
	if !ok {
		return
	}

	days := h.cfg.Trending.DefaultDays
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_DAYS",
					"message": "Days must be a positive integer",
				},
			})
			return
		}
		days = parsed
	}

	products := trending.TopProducts(h.store.Snapshot(), days, count, h.cfg.Trending.MinRatings)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
		"days":     days,
	})
}

func (h *ProductsHandler) parseCount(c *gin.Context) (int, bool) {
	count := h.cfg.Recommendation.DefaultCount
	if countStr := c.Query("count"); countStr != "" {
		parsed, err := strconv.Atoi(countStr)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_COUNT",
					"message": "Count must be an integer between 1 and 100",
				},
			})
			return 0, false
		}
		count = parsed
	}
	return count, true
}
