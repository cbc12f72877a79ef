package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/storage"
)

type HealthHandler struct {
	logger *logrus.Logger
	store  *storage.SnapshotStore
}

func NewHealthHandler(logger *logrus.Logger, store *storage.SnapshotStore) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		store:  store,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := "healthy"
	httpStatus := http.StatusOK
	if h.store.Len() == 0 {
		// An empty rating table can still serve health and stats,
		// but recommendations will fail everywhere.
		status = "degraded"
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"ratings":   h.store.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
