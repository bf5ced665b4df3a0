package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking_system/internal/api"
	"parking_system/internal/api/handler"
	"parking_system/internal/api/middleware"
	"parking_system/internal/config"
	"parking_system/internal/repository/postgresql"
	"parking_system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		logrus.Fatalf("could not connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := postgresql.Migrate(ctx, db); err != nil {
		logrus.Fatalf("could not apply schema: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logrus.Warnf("redis unavailable, list caching disabled: %v", err)
		redisClient = nil
	}

	adminRepo := postgresql.NewPgAdminRepository(db)
	userRepo := postgresql.NewPgUserRepository(db)
	lotRepo := postgresql.NewPgParkingLotRepository(db)
	spotRepo := postgresql.NewPgParkingSpotRepository(db)
	reservationRepo := postgresql.NewPgReservationRepository(db)
	statsRepo := postgresql.NewPgStatsRepository(db)

	wsManager := handler.NewWebSocketManager()
	go wsManager.Start()

	authService := service.NewAuthService(adminRepo, userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	if err := authService.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.Fatalf("could not seed admin account: %v", err)
	}

	policy := service.LotPolicy{MinSpots: cfg.MinSpotsPerLot, MaxSpots: cfg.MaxSpotsPerLot}
	parkingService := service.NewParkingService(lotRepo, spotRepo, policy, wsManager)
	reservationService := service.NewReservationService(lotRepo, spotRepo, reservationRepo, wsManager)
	userService := service.NewUserService(userRepo)
	statsService := service.NewStatsService(statsRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	router := api.SetupRouter(api.Services{
		Auth:        authService,
		Parking:     parkingService,
		Reservation: reservationService,
		User:        userService,
		Stats:       statsService,
	}, authMiddleware, wsManager, redisClient, cfg.ListCacheTTL)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logrus.Infof("server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("forced shutdown: %v", err)
	}
	logrus.Info("server stopped")
}
