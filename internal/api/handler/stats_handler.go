package handler

import (
	"net/http"

	"parking_system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(ss *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: ss}
}

// GET /api/stats/dashboard
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("computing dashboard stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
