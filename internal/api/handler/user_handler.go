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

type UserHandler struct {
	userService *service.UserService
	rdb         *redis.Client
	cacheTTL    time.Duration
}

func NewUserHandler(us *service.UserService, rdb *redis.Client, cacheTTL time.Duration) *UserHandler {
	return &UserHandler{userService: us, rdb: rdb, cacheTTL: cacheTTL}
}

// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var cached []domain.User
	if hit, err := cache.Get(c.Request.Context(), h.rdb, cache.KeyUsers, &cached); err == nil && hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("listing users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	if err := cache.Set(c.Request.Context(), h.rdb, cache.KeyUsers, users, h.cacheTTL); err != nil {
		logrus.WithError(err).Warn("could not cache users")
	}
	c.JSON(http.StatusOK, users)
}

// PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var dto domain.UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.SetActive(c.Request.Context(), id, *dto.IsActive)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logrus.WithError(err).Error("updating user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
		return
	}
	h.invalidate(c)
	c.JSON(http.StatusOK, user)
}

// DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logrus.WithError(err).Error("deleting user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
		return
	}
	h.invalidate(c)
	c.JSON(http.StatusNoContent, nil)
}

func (h *UserHandler) invalidate(c *gin.Context) {
	if err := cache.Delete(c.Request.Context(), h.rdb, cache.KeyUsers); err != nil {
		logrus.WithError(err).Warn("could not invalidate users cache")
	}
}
