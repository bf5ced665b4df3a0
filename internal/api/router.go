package api

import (
	"time"

	"parking_system/internal/api/handler"
	"parking_system/internal/api/middleware"
	"parking_system/internal/domain"
	"parking_system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Services struct {
	Auth        *service.AuthService
	Parking     *service.ParkingService
	Reservation *service.ReservationService
	User        *service.UserService
	Stats       *service.StatsService
}

func SetupRouter(svc Services, authMw *middleware.AuthMiddleware, wsManager *handler.WebSocketManager, rdb *redis.Client, cacheTTL time.Duration) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if wsManager != nil {
		wsHandler := handler.NewWebSocketHandler(wsManager)
		r.GET("/ws", wsHandler.HandleWebSocket)
	}

	authHandler := handler.NewAuthHandler(svc.Auth)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	apiRoutes := r.Group("/api")
	apiRoutes.Use(authMw.Authenticate())
	{
		lotH := handler.NewParkingLotHandler(svc.Parking, rdb, cacheTTL)
		spotH := handler.NewParkingSpotHandler(svc.Parking, rdb)
		lotRoutes := apiRoutes.Group("/lots")
		{
			lotRoutes.GET("", lotH.ListLots)
			lotRoutes.POST("", authMw.AuthorizeRole(domain.RoleAdmin), lotH.CreateLot)
			lotRoutes.PUT("/:id", authMw.AuthorizeRole(domain.RoleAdmin), lotH.UpdateLot)
			lotRoutes.DELETE("/:id", authMw.AuthorizeRole(domain.RoleAdmin), lotH.DeleteLot)
			lotRoutes.DELETE("", authMw.AuthorizeRole(domain.RoleAdmin), lotH.ClearAll)
			lotRoutes.POST("/:id/spots/:spot_id/toggle", authMw.AuthorizeRole(domain.RoleAdmin), spotH.ToggleSpot)
		}

		userH := handler.NewUserHandler(svc.User, rdb, cacheTTL)
		userRoutes := apiRoutes.Group("/users")
		userRoutes.Use(authMw.AuthorizeRole(domain.RoleAdmin))
		{
			userRoutes.GET("", userH.ListUsers)
			userRoutes.PUT("/:id", userH.UpdateUser)
			userRoutes.DELETE("/:id", userH.DeleteUser)
		}

		reservationH := handler.NewReservationHandler(svc.Reservation, rdb)
		reservationRoutes := apiRoutes.Group("/reservations")
		{
			reservationRoutes.POST("", reservationH.CreateReservation)
			reservationRoutes.POST("/:id/release", reservationH.ReleaseReservation)
			reservationRoutes.GET("", reservationH.ListReservations)
		}

		statsH := handler.NewStatsHandler(svc.Stats)
		apiRoutes.GET("/stats/dashboard", authMw.AuthorizeRole(domain.RoleAdmin), statsH.Dashboard)
	}
	return r
}
