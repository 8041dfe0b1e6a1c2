package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/thereayou/ephroom/internal/handlers"
	"github.com/thereayou/ephroom/internal/middleware"
	"github.com/thereayou/ephroom/pkg/auth"
)

func RegisterRoutes(
	r *gin.Engine,
	rdb *redis.Client,
	tokens *auth.TokenManager,
	authH *handlers.AuthHandler,
	schoolH *handlers.SchoolHandler,
	roomH *handlers.RoomHandler,
	queueH *handlers.QueueHandler,
	messageH *handlers.MessageHandler,
	profileH *handlers.ProfileHandler,
	wsH *handlers.WebSocketHandler,
) {
	authRequired := middleware.AuthMiddleware(tokens, rdb)

	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/logout", authH.Logout)
	}

	// API endpoints
	api := r.Group("/api/v1")
	{
		api.GET("/schools", schoolH.GetSchools)
		api.GET("/rooms", roomH.GetRooms)
		api.GET("/rooms/:id/queue", queueH.GetQueue)

		api.PATCH("/rooms/:id/occupancy", authRequired, roomH.UpdateOccupancy)
		api.GET("/rooms/:id/history", authRequired, roomH.GetHistory)

		api.POST("/rooms/:id/queue", authRequired, queueH.JoinQueue)
		api.DELETE("/rooms/:id/queue", authRequired, queueH.LeaveQueue)

		api.GET("/rooms/:id/messages", authRequired, messageH.GetRoomMessages)
		api.POST("/rooms/:id/messages", authRequired, messageH.SendMessage)

		api.GET("/profile", authRequired, profileH.GetProfile)
		api.PUT("/profile", authRequired, profileH.UpdateProfile)
	}

	// Realtime feed
	r.GET("/ws", authRequired, wsH.HandleWebSocket)
}
