package router

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/handlers"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/middleware"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/registry"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/repositories"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/services"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/ws"
	"github.com/rishuraj778292/LLMbeing-sub001/pkg/config"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// Returns the broadcaster so main can close it on shutdown.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB) ws.Broadcaster {
	database := db.Mongo.Database(cfg.MongoDB)

	// --- Initialize repositories ---
	roomRepo := repositories.NewMongoChatRoomRepository(database)
	messageRepo := repositories.NewMongoMessageRepository(database)
	notificationRepo := repositories.NewMongoNotificationRepository(database)

	indexCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for name, repo := range map[string]interface {
		EnsureIndexes(ctx context.Context) error
	}{
		"chatrooms":     roomRepo,
		"messages":      messageRepo,
		"notifications": notificationRepo,
	} {
		if err := repo.EnsureIndexes(indexCtx); err != nil {
			log.Fatalf("Failed to create %s indexes: %v", name, err)
		}
	}
	log.Println("MongoDB indexes ensured for all collections.")

	// --- Collaborators ---
	var directory registry.UserDirectory = registry.OpenDirectory{}
	if cfg.DirectoryURL != "" {
		directory = registry.NewHTTPUserDirectory(cfg.DirectoryURL)
	}
	var projects registry.ProjectRegistry = registry.StaticProjects{}
	if cfg.ProjectsURL != "" {
		projects = registry.NewHTTPProjectRegistry(cfg.ProjectsURL)
	}
	var moderator registry.Moderator = registry.AllowAllModerator{}
	if cfg.ModerationURL != "" {
		moderator = registry.NewHTTPModerator(cfg.ModerationURL)
	}

	// --- Services ---
	roomService := services.NewRoomService(roomRepo, messageRepo, directory, projects)
	messagingService := services.NewMessagingService(roomRepo, messageRepo, notificationRepo, moderator)

	// --- Transport ---
	hub := ws.NewHub(cfg.PresenceGrace, cfg.TypingTTL)
	var broadcaster ws.Broadcaster
	if db.Redis != nil {
		broadcaster = ws.NewRedisBroadcaster(db.Redis, hub)
		log.Println("Redis pub/sub broadcaster configured.")
	} else {
		broadcaster = ws.NewLocalBroadcaster(hub)
		log.Println("In-memory broadcaster configured (single instance).")
	}
	gateway := ws.NewGateway(hub, broadcaster, roomService, messagingService)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	wsHandler := handlers.NewWSHandler(hub, gateway, cfg.JWTSecret)
	wsHandler.RegisterWSRoutes(e)
	log.Println("Websocket endpoint configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	tokenHandler := handlers.NewTokenHandler(cfg.JWTSecret, cfg.SocketTokenTTL)
	tokenHandler.RegisterTokenRoutes(api)
	log.Println("Socket token route configured.")

	chatRoomHandler := handlers.NewChatRoomHandler(roomService, messagingService, gateway)
	chatRoomHandler.RegisterChatRoomRoutes(api)
	log.Println("Chat room routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
	return broadcaster
}
