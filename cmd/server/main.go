package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/snapgrove/backend/internal/auth"
	"github.com/snapgrove/backend/internal/cache"
	"github.com/snapgrove/backend/internal/database"
	"github.com/snapgrove/backend/internal/handlers"
	"github.com/snapgrove/backend/internal/logger"
	"github.com/snapgrove/backend/internal/metrics"
	"github.com/snapgrove/backend/internal/middleware"
	"github.com/snapgrove/backend/internal/storage"
	"github.com/snapgrove/backend/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := logger.Initialize(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FILE", "server.log")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Snapgrove server starting ===")

	// Database
	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional; the server degrades gracefully without it
	if _, err := cache.NewRedisClient(
		getEnv("REDIS_HOST", "localhost"),
		getEnv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
	); err != nil {
		logger.Log.Warn("Redis unavailable, continuing without cache", zap.Error(err))
	}

	// Tracing
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "snapgrove-backend",
		Environment:  getEnv("ENVIRONMENT", "development"),
		OTLPEndpoint: getEnv("OTLP_ENDPOINT", "localhost:4318"),
		Enabled:      os.Getenv("TRACING_ENABLED") == "true",
		SamplingRate: parseFloat(getEnv("TRACE_SAMPLING_RATE", "1.0")),
	})
	if err != nil {
		logger.Log.Warn("Failed to initialize tracing", zap.Error(err))
	}

	// Prometheus metrics
	metrics.Initialize()

	// Auth service
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}
	authService := auth.NewService(jwtSecret)

	// S3 uploader
	s3Uploader, err := storage.NewS3Uploader(
		getEnv("AWS_REGION", "us-east-1"),
		os.Getenv("AWS_BUCKET"),
		os.Getenv("CDN_BASE_URL"),
	)
	if err != nil {
		logger.Log.Fatal("Failed to initialize S3 uploader", zap.Error(err))
	}
	if err := s3Uploader.CheckBucketAccess(context.Background()); err != nil {
		logger.Log.Warn("S3 bucket access failed, photo uploads will fail", zap.Error(err))
	}

	h := handlers.NewHandlers(authService, s3Uploader)

	// Request coalescer for the API surface
	coalescer := middleware.NewRequestCoalescer(middleware.DefaultCoalescerConfig())
	defer coalescer.Stop()

	// Router
	if getEnv("ENVIRONMENT", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{getEnv("CORS_ORIGIN", "*")}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(otelgin.Middleware("snapgrove-backend"))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "snapgrove-backend",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes. The coalescer runs after identity resolution so the
	// fingerprint sees the resolved user, and before the handlers so
	// duplicate bursts collapse onto one execution.
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit())
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", middleware.RateLimitAuth(), h.Register)
			authGroup.POST("/login", middleware.RateLimitAuth(), h.Login)
			authGroup.GET("/me", authService.Middleware(), h.Me)
		}

		// Public browse surface: anonymous requests coalesce under the
		// shared anonymous identity
		browse := api.Group("")
		browse.Use(authService.OptionalMiddleware(), coalescer.Middleware())
		{
			browse.GET("/photos", h.ListPhotos)
			browse.GET("/photos/:id", h.GetPhoto)
			browse.GET("/collections", h.ListCollections)
			browse.GET("/collections/:id", h.GetCollection)
			browse.GET("/users/:id", h.GetUserProfile)
			browse.GET("/users/:id/photos", h.ListUserPhotos)
			browse.GET("/users/:id/followers", h.ListFollowers)
			browse.GET("/users/:id/following", h.ListFollowing)
		}

		authed := api.Group("")
		authed.Use(authService.Middleware(), coalescer.Middleware())
		{
			authed.POST("/photos/upload", middleware.RateLimitUpload(), h.UploadPhoto)
			authed.PATCH("/photos/:id", h.UpdatePhoto)
			authed.DELETE("/photos/:id", h.DeletePhoto)

			authed.POST("/photos/:id/favorite", h.FavoritePhoto)
			authed.DELETE("/photos/:id/favorite", h.UnfavoritePhoto)
			authed.GET("/favorites", h.ListFavorites)
			authed.GET("/feed", h.Feed)

			authed.GET("/users/me", h.Me)
			authed.PUT("/users/me", h.UpdateProfile)
			authed.POST("/users/me/avatar", middleware.RateLimitUpload(), h.UploadAvatar)

			authed.POST("/users/:id/follow", h.FollowUser)
			authed.DELETE("/users/:id/follow", h.UnfollowUser)

			authed.POST("/collections", h.CreateCollection)
			authed.PATCH("/collections/:id", h.UpdateCollection)
			authed.DELETE("/collections/:id", h.DeleteCollection)
			authed.POST("/collections/:id/photos", h.AddPhotoToCollection)
			authed.DELETE("/collections/:id/photos/:photoId", h.RemovePhotoFromCollection)

			authed.POST("/reports", h.CreateReport)

			authed.GET("/notifications", h.ListNotifications)
			authed.GET("/notifications/counts", h.NotificationCounts)
			authed.POST("/notifications/:id/read", h.MarkNotificationRead)
			authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		}

		admin := api.Group("/admin")
		admin.Use(authService.Middleware(), middleware.RequireAdmin())
		{
			admin.GET("/reports", h.AdminListReports)
			admin.POST("/reports/:id/resolve", h.AdminResolveReport)
			admin.POST("/photos/:id/remove", h.AdminRemovePhoto)
			admin.POST("/users/:id/ban", h.AdminBanUser)
		}
	}

	port := getEnv("PORT", "8787")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Snapgrove backend listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	if redis := cache.GetRedisClient(); redis != nil {
		if err := redis.Close(); err != nil {
			logger.Log.Warn("Redis close failed", zap.Error(err))
		}
	}

	logger.Log.Info("Server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1.0
	}
	return v
}
