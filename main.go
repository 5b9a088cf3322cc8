package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/kaspertech/crowdguard-console/config"
	"github.com/kaspertech/crowdguard-console/handlers"
	"github.com/kaspertech/crowdguard-console/middleware"
	"github.com/kaspertech/crowdguard-console/models"
	"github.com/kaspertech/crowdguard-console/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize services
	upstream := services.NewUpstreamService(cfg.Upstream)
	channel := services.NewChannelService(cfg.Socket)
	monitor := services.NewMonitorService(cfg.Monitor)
	hub := services.NewHub()
	alerts := services.NewAlertService(hub)

	wirePipeline(channel, monitor, alerts, hub)

	if err := channel.Connect(context.Background()); err != nil {
		log.Printf("Monitoring socket unavailable: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(upstream)
	cameraHandler := handlers.NewCameraHandler(upstream)
	entranceHandler := handlers.NewEntranceHandler(upstream)
	userHandler := handlers.NewUserHandler(upstream)
	alertHandler := handlers.NewAlertHandler(upstream)
	detectionHandler := handlers.NewDetectionHandler(upstream)
	monitorHandler := handlers.NewMonitorHandler(monitor, upstream, channel)
	streamHandler := handlers.NewStreamHandler(hub, channel)

	// Setup router
	router := setupRouter(cfg, authHandler, cameraHandler, entranceHandler,
		userHandler, alertHandler, detectionHandler, monitorHandler, streamHandler)

	// Start server
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Console gateway starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// wirePipeline connects inbound socket events to the monitoring pipeline
// and the alert dispatcher. Everything downstream runs on the channel's
// read loop, so ingestion stays single-threaded per connection.
func wirePipeline(channel *services.ChannelService, monitor *services.MonitorService, alerts *services.AlertService, hub *services.Hub) {
	channel.Subscribe("countUpdate", func(data json.RawMessage) {
		var sample struct {
			CameraID string `json:"camera_id"`
			Count    int    `json:"count"`
		}
		if err := services.DecodePayload(data, &sample); err != nil {
			log.Printf("[Monitor] Undecodable count update: %v", err)
			return
		}

		window, err := monitor.Ingest(sample.CameraID, sample.Count)
		if err != nil {
			log.Printf("[Monitor] Rejected sample: %v", err)
			return
		}
		if window == nil {
			return
		}
		if snapshot, ok := monitor.Snapshot(window.CameraID); ok {
			hub.BroadcastWindow(*window, snapshot)
		}
	})

	channel.Subscribe("newAlert", func(data json.RawMessage) {
		alerts.Dispatch(data, models.ScopeEntrance)
	})

	channel.Subscribe("globalAlert", func(data json.RawMessage) {
		alerts.Dispatch(data, models.ScopeGlobal)
	})
}

func setupRouter(cfg *config.Config,
	authHandler *handlers.AuthHandler,
	cameraHandler *handlers.CameraHandler,
	entranceHandler *handlers.EntranceHandler,
	userHandler *handlers.UserHandler,
	alertHandler *handlers.AlertHandler,
	detectionHandler *handlers.DetectionHandler,
	monitorHandler *handlers.MonitorHandler,
	streamHandler *handlers.StreamHandler) *gin.Engine {
	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS configuration
	// Allow all localhost origins for development
	router.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			// Allow requests with no origin (like mobile apps or curl requests)
			if origin == "" {
				return true
			}
			// Allow all localhost and 127.0.0.1 origins
			return origin == "http://localhost:8080" ||
				origin == "http://localhost:5173" ||
				origin == "http://localhost:3000" ||
				origin == "http://127.0.0.1:8080" ||
				origin == "http://127.0.0.1:5173" ||
				origin == "http://127.0.0.1:3000"
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * 3600, // 12 hours
	}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes
	api := router.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		// Auth routes
		protected.GET("/auth/me", authHandler.GetMe)
		protected.POST("/auth/logout", authHandler.Logout)

		// Camera routes
		cameras := protected.Group("/cameras")
		{
			cameras.GET("", cameraHandler.List)
			cameras.GET("/:id", cameraHandler.Get)
			cameras.POST("", cameraHandler.Create)
			cameras.PUT("/:id", cameraHandler.Update)
			cameras.DELETE("/:id", cameraHandler.Delete)
			cameras.PUT("/:id/restore", cameraHandler.Restore)
			cameras.POST("/:id/start", cameraHandler.Start)
			cameras.POST("/:id/stop", cameraHandler.Stop)
			cameras.GET("/:id/feed", cameraHandler.GetFeed)
		}

		// Entrance routes
		entrances := protected.Group("/entrances")
		{
			entrances.GET("", entranceHandler.List)
			entrances.GET("/:id", entranceHandler.Get)
			entrances.POST("", entranceHandler.Create)
			entrances.PUT("/:id", entranceHandler.Update)
			entrances.DELETE("/:id", entranceHandler.Delete)
			entrances.PUT("/:id/restore", entranceHandler.Restore)
		}

		// User routes
		users := protected.Group("/users")
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.POST("", userHandler.Create)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
			users.PUT("/:id/restore", userHandler.Restore)
		}

		// Alert record routes
		alerts := protected.Group("/alerts")
		{
			alerts.GET("", alertHandler.List)
			alerts.GET("/:id", alertHandler.Get)
			alerts.POST("", alertHandler.Create)
			alerts.PUT("/:id", alertHandler.Update)
			alerts.DELETE("/:id", alertHandler.Delete)
			alerts.PUT("/:id/restore", alertHandler.Restore)
		}

		// Detection history routes
		detections := protected.Group("/detections")
		{
			detections.GET("", detectionHandler.List)
			detections.GET("/:id", detectionHandler.Get)
		}

		// Live monitoring routes
		monitorGroup := protected.Group("/monitor")
		{
			monitorGroup.POST("/:id", monitorHandler.Observe)
			monitorGroup.DELETE("/:id", monitorHandler.Unobserve)
			monitorGroup.GET("/:id", monitorHandler.Snapshot)
		}

		// Console notification/metrics stream
		protected.GET("/stream", streamHandler.Stream)
	}

	return router
}
