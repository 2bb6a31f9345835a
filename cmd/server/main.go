package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yueban/activity-board/internal/config"
	"github.com/yueban/activity-board/internal/constants"
	"github.com/yueban/activity-board/internal/database"
	"github.com/yueban/activity-board/internal/handlers"
	"github.com/yueban/activity-board/internal/middleware"
	"github.com/yueban/activity-board/internal/repository"
	"github.com/yueban/activity-board/internal/services"
	"github.com/yueban/activity-board/internal/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	displayZone, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.DisplayTimezone).Msg("invalid display timezone")
	}

	// Repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	authService := services.NewAuthService(userRepo)
	activityService := services.NewActivityService(activityRepo)
	chatService := services.NewChatService(messageRepo, activityRepo, userRepo, displayZone)

	// Realtime hub and expiry sweeper share the process lifetime
	hub := ws.NewHub(logger.With().Str("component", "hub").Logger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := services.NewSweeper(
		activityRepo,
		time.Duration(cfg.SweepInterval)*time.Minute,
		logger.With().Str("component", "sweeper").Logger(),
	)
	go sweeper.Run(ctx)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create Redis store")
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	activityHandler := handlers.NewActivityHandler(activityService, authService, hub, displayZone)
	chatHandler := handlers.NewChatHandler(chatService)
	wsHandler := handlers.NewWSHandler(hub, chatService, authService, logger.With().Str("component", "ws").Logger())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Activity Board API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.PUT("/profile", middleware.RequireAuth(), authHandler.UpdateProfile)
			auth.DELETE("/account", middleware.RequireAuth(), authHandler.DeleteAccount)
		}

		// Activity routes
		activities := api.Group("/activities")
		{
			activities.GET("", activityHandler.ListActivities)
			activities.POST("", middleware.RequireAuth(), activityHandler.CreateActivity)
			activities.GET("/manage", middleware.RequireAuth(), activityHandler.ManageActivities)
			activities.GET("/:id", activityHandler.GetActivity)
			activities.PUT("/:id", middleware.RequireAuth(), activityHandler.UpdateActivity)
			activities.DELETE("/:id", middleware.RequireAuth(), activityHandler.DeleteActivity)
			activities.POST("/:id/join", middleware.RequireAuth(), activityHandler.JoinActivity)
			activities.POST("/:id/leave", middleware.RequireAuth(), activityHandler.LeaveActivity)
		}

		// Chat routes (participant checks happen in the service)
		chats := api.Group("/chats")
		chats.Use(middleware.RequireAuth())
		{
			chats.GET("/recent", chatHandler.GetRecentConversations)
			chats.GET("/:conversation_id", chatHandler.GetConversation)
		}
	}

	// Realtime endpoint
	r.GET("/ws", middleware.RequireAuth(), wsHandler.Handle)

	// Start server
	logger.Info().Msg("server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
