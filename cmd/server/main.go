package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/ykurohata/workorder-api/internal/analytics"
	"github.com/ykurohata/workorder-api/internal/config"
	"github.com/ykurohata/workorder-api/internal/constants"
	"github.com/ykurohata/workorder-api/internal/database"
	"github.com/ykurohata/workorder-api/internal/handlers"
	"github.com/ykurohata/workorder-api/internal/logging"
	"github.com/ykurohata/workorder-api/internal/middleware"
	"github.com/ykurohata/workorder-api/internal/repository"
	"github.com/ykurohata/workorder-api/internal/services"
	"github.com/ykurohata/workorder-api/internal/utils"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize logging
	logger, err := logging.Init(cfg.LogLevel, cfg.GinMode != "release")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	// Probe the connected store for the analytics layer
	db := database.GetDB()
	caps := analytics.DetectCapabilities(db)
	aggregator := analytics.NewAggregator(db, caps)

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// Sessions signed with a generated key are invalidated on restart
	sessionSecret := cfg.SessionSecret
	if sessionSecret == "" {
		sessionSecret, err = utils.GenerateSessionSecret()
		if err != nil {
			logger.Fatal("failed to generate session secret", zap.Error(err))
		}
		logger.Warn("SESSION_SECRET not set, using a generated key")
	}

	// Setup the session store: Redis when configured, cookies otherwise
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		store, err = redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(sessionSecret), // authentication key
		)
		if err != nil {
			logger.Fatal("failed to create Redis store", zap.Error(err))
		}
	} else {
		store = cookie.NewStore([]byte(sessionSecret))
	}

	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Wire repositories and services
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, auditRepo, aiService)
	userService := services.NewUserService(userRepo, auditRepo)
	auditService := services.NewAuditService(auditRepo)
	exportService := services.NewExportService(taskRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService, taskService, cfg.UploadDir)
	dashboardHandler := handlers.NewDashboardHandler(aggregator)
	exportHandler := handlers.NewExportHandler(exportService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Static profile pictures
	r.Static("/uploads", cfg.UploadDir)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Task routes (authenticated)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/completed", taskHandler.ListCompleted)
			tasks.GET("/:id", middleware.RequireTask(), taskHandler.GetTask)
			tasks.PUT("/:id/status", middleware.RequireTask(), taskHandler.UpdateStatus)

			// Admin-only task operations
			tasks.POST("", middleware.RequireAdmin(), taskHandler.CreateTask)
			tasks.POST("/suggest", middleware.RequireAdmin(), taskHandler.SuggestTasks)
			tasks.GET("/export", middleware.RequireAdmin(), exportHandler.ExportTasks)
			tasks.DELETE("/:id", middleware.RequireAdmin(), middleware.RequireTask(), taskHandler.DeleteTask)
		}

		// Profile routes (authenticated)
		profile := api.Group("/profile")
		profile.Use(middleware.RequireAuth())
		{
			profile.GET("", userHandler.GetProfile)
			profile.PUT("", userHandler.UpdateProfile)
			profile.POST("/picture", userHandler.UploadProfilePicture)
			profile.DELETE("/picture", userHandler.DeleteProfilePicture)
		}

		// Admin directory, analytics and audit routes
		admin := api.Group("")
		admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			admin.GET("/workers", userHandler.ListWorkers)
			admin.GET("/workers/:id", userHandler.GetWorker)
			admin.DELETE("/workers/:id", userHandler.RemoveWorker)
			admin.GET("/admins", userHandler.ListAdmins)
			admin.GET("/admins/:id", userHandler.GetAdmin)
			admin.GET("/analytics/dashboard", dashboardHandler.GetDashboard)
			admin.GET("/audit-logs", auditHandler.ListAuditLogs)
		}
	}

	// Start server
	addr := ":" + cfg.Port
	logger.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
