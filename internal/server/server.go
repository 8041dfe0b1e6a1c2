package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/thereayou/ephroom/internal/config"
	"github.com/thereayou/ephroom/internal/database"
	"github.com/thereayou/ephroom/internal/handlers"
	"github.com/thereayou/ephroom/internal/realtime"
	"github.com/thereayou/ephroom/pkg/auth"
)

type Server struct {
	Router *gin.Engine
	DB     *database.Database
	Redis  *redis.Client
	Tokens *auth.TokenManager
	Hub    *realtime.Hub

	cfg *config.Config
}

func NewServer() *Server {
	cfg := config.Load()

	dbConn := &database.Database{}
	if err := dbConn.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	hub := realtime.NewHub(rdb)
	go hub.Run()

	router := gin.Default()
	APIEndpoints(router, dbConn, rdb, tokens, hub)

	return &Server{
		Router: router,
		DB:     dbConn,
		Redis:  rdb,
		Tokens: tokens,
		Hub:    hub,
		cfg:    cfg,
	}
}

func (s *Server) Run() {
	log.Printf("Server starting on port %s", s.cfg.Port)
	if err := s.Router.Run(":" + s.cfg.Port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}

func (s *Server) Stop() {
	s.Hub.Stop()
}

func APIEndpoints(r *gin.Engine, db *database.Database, rdb *redis.Client, tokens *auth.TokenManager, hub *realtime.Hub) {
	authH := handlers.NewAuthHandler(db, tokens, rdb)
	schoolH := handlers.NewSchoolHandler(db)
	roomH := handlers.NewRoomHandler(db, hub)
	queueH := handlers.NewQueueHandler(db, hub)
	messageH := handlers.NewMessageHandler(db, hub)
	profileH := handlers.NewProfileHandler(db)
	wsH := handlers.NewWebSocketHandler(hub)

	RegisterRoutes(r, rdb, tokens, authH, schoolH, roomH, queueH, messageH, profileH, wsH)
}
