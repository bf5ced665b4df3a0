package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"parking_system/internal/cache"
	"parking_system/internal/domain"
	"parking_system/internal/repository"
	"parking_system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type ParkingSpotHandler struct {
	parkingService *service.ParkingService
	rdb            *redis.Client
}

func NewParkingSpotHandler(ps *service.ParkingService, rdb *redis.Client) *ParkingSpotHandler {
	return &ParkingSpotHandler{parkingService: ps, rdb: rdb}
}

// POST /api/lots/:id/spots/:spot_id/toggle
func (h *ParkingSpotHandler) ToggleSpot(c *gin.Context) {
	lotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}
	spotID, err := strconv.Atoi(c.Param("spot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	// Body is optional; an empty one means derived customer placeholders.
	var dto domain.ToggleSpotDTO
	if err := c.ShouldBindJSON(&dto); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spot, err := h.parkingService.ToggleSpot(c.Request.Context(), lotID, spotID, dto)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "parking spot not found"})
		case errors.Is(err, repository.ErrSpotConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "spot status changed concurrently, retry"})
		default:
			logrus.WithError(err).Error("toggling spot failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not toggle spot"})
		}
		return
	}

	if err := cache.Delete(c.Request.Context(), h.rdb, cache.KeyLots); err != nil {
		logrus.WithError(err).Warn("could not invalidate lots cache")
	}
	c.JSON(http.StatusOK, spot)
}
