package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"parking_system/internal/cache"
	"parking_system/internal/domain"
	"parking_system/internal/repository"
	"parking_system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type ParkingLotHandler struct {
	parkingService *service.ParkingService
	rdb            *redis.Client
	cacheTTL       time.Duration
}

func NewParkingLotHandler(ps *service.ParkingService, rdb *redis.Client, cacheTTL time.Duration) *ParkingLotHandler {
	return &ParkingLotHandler{parkingService: ps, rdb: rdb, cacheTTL: cacheTTL}
}

func (h *ParkingLotHandler) invalidate(c *gin.Context) {
	if err := cache.Delete(c.Request.Context(), h.rdb, cache.KeyLots); err != nil {
		logrus.WithError(err).Warn("could not invalidate lots cache")
	}
}

// GET /api/lots
func (h *ParkingLotHandler) ListLots(c *gin.Context) {
	var cached []domain.ParkingLot
	if hit, err := cache.Get(c.Request.Context(), h.rdb, cache.KeyLots, &cached); err == nil && hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	lots, err := h.parkingService.ListLots(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("listing lots failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list parking lots"})
		return
	}
	if lots == nil {
		lots = []domain.ParkingLot{}
	}
	if err := cache.Set(c.Request.Context(), h.rdb, cache.KeyLots, lots, h.cacheTTL); err != nil {
		logrus.WithError(err).Warn("could not cache lots")
	}
	c.JSON(http.StatusOK, lots)
}

// POST /api/lots
func (h *ParkingLotHandler) CreateLot(c *gin.Context) {
	var dto domain.CreateParkingLotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lot, err := h.parkingService.CreateLot(c.Request.Context(), dto)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		case errors.Is(err, service.ErrLotNameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logrus.WithError(err).Error("creating lot failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create parking lot"})
		}
		return
	}
	h.invalidate(c)
	c.JSON(http.StatusCreated, lot)
}

// PUT /api/lots/:id
func (h *ParkingLotHandler) UpdateLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}

	var dto domain.UpdateParkingLotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lot, err := h.parkingService.UpdateLot(c.Request.Context(), id, dto)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "parking lot not found"})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		case errors.Is(err, service.ErrLotNameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logrus.WithError(err).Error("updating lot failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update parking lot"})
		}
		return
	}
	h.invalidate(c)
	c.JSON(http.StatusOK, lot)
}

// DELETE /api/lots/:id
func (h *ParkingLotHandler) DeleteLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}

	if err := h.parkingService.DeleteLot(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "parking lot not found"})
		case errors.Is(err, repository.ErrSpotsOccupied):
			c.JSON(http.StatusConflict, gin.H{"error": "cannot delete lot with occupied spots"})
		default:
			logrus.WithError(err).Error("deleting lot failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete parking lot"})
		}
		return
	}
	h.invalidate(c)
	c.JSON(http.StatusNoContent, nil)
}

// DELETE /api/lots
func (h *ParkingLotHandler) ClearAll(c *gin.Context) {
	if err := h.parkingService.ClearAll(c.Request.Context()); err != nil {
		logrus.WithError(err).Error("clearing parking data failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear parking data"})
		return
	}
	h.invalidate(c)
	c.JSON(http.StatusOK, gin.H{"message": "all parking data cleared"})
}
