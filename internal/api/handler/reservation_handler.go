package handler

import (
	"errors"
	"net/http"
	"strconv"

	"parking_system/internal/api/middleware"
	"parking_system/internal/cache"
	"parking_system/internal/domain"
	"parking_system/internal/repository"
	"parking_system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type ReservationHandler struct {
	reservationService *service.ReservationService
	rdb                *redis.Client
}

func NewReservationHandler(rs *service.ReservationService, rdb *redis.Client) *ReservationHandler {
	return &ReservationHandler{reservationService: rs, rdb: rdb}
}

// POST /api/reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var dto domain.CreateReservationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID, _ := middleware.Caller(c)
	res, err := h.reservationService.Create(c.Request.Context(), callerID, dto)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "lot or spot not found"})
		case errors.Is(err, service.ErrSpotUnavailable), errors.Is(err, service.ErrNoFreeSpots):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logrus.WithError(err).Error("creating reservation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create reservation"})
		}
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusCreated, res)
}

// POST /api/reservations/:id/release
func (h *ReservationHandler) ReleaseReservation(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	callerID, callerRole := middleware.Caller(c)
	res, err := h.reservationService.Release(c.Request.Context(), id, callerID, callerRole)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
		case errors.Is(err, service.ErrNotReservationOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrReservationClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "reservation already released"})
		default:
			logrus.WithError(err).Error("releasing reservation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not release reservation"})
		}
		return
	}

	h.invalidate(c)
	c.JSON(http.StatusOK, res)
}

// GET /api/reservations
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	callerID, callerRole := middleware.Caller(c)
	reservations, err := h.reservationService.List(c.Request.Context(), callerID, callerRole)
	if err != nil {
		logrus.WithError(err).Error("listing reservations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reservations"})
		return
	}
	if reservations == nil {
		reservations = []domain.Reservation{}
	}
	c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) invalidate(c *gin.Context) {
	if err := cache.Delete(c.Request.Context(), h.rdb, cache.KeyLots); err != nil {
		logrus.WithError(err).Warn("could not invalidate lots cache")
	}
}
