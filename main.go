package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mattalagalams/nsp-agent/config"
	"github.com/mattalagalams/nsp-agent/handler"
	"github.com/mattalagalams/nsp-agent/middleware"
	"github.com/mattalagalams/nsp-agent/pkg/logger"
	"github.com/mattalagalams/nsp-agent/service"
)

func main() {
	// Optional .env for local development; environment always wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Pick the agent runtime: live when the endpoint+agent pair is present,
	// otherwise the local stub
	var runtime service.AgentRuntime
	if cfg.LiveAgent() {
		runtime = service.NewOpenAIRuntime(&cfg.Agent)
		slog.Info("agent runtime initialized",
			"mode", "live",
			"agent_id", cfg.Agent.AgentID,
			"model", cfg.Agent.Model,
		)
	} else {
		runtime = service.NewStubRuntime(time.Duration(cfg.Agent.StubDelaySeconds) * time.Second)
		slog.Warn("agent endpoint or agent id missing, using stub runtime")
	}

	proposalSvc := service.NewProposalService(runtime, cfg)

	// Pick the proposal store: Redis when configured, in-memory otherwise
	var store service.ProposalStore
	if cfg.Store.RedisURL != "" {
		redisStore, err := service.NewRedisStore(cfg.Store.RedisURL, time.Duration(cfg.Store.TTLHours)*time.Hour)
		if err != nil {
			slog.Error("failed to initialize redis store", "error", err)
			os.Exit(1)
		}
		if err := redisStore.Ping(context.Background()); err != nil {
			slog.Error("failed to reach redis", "error", err)
			os.Exit(1)
		}
		store = redisStore
		slog.Info("proposal store initialized", "backend", "redis", "ttl_hours", cfg.Store.TTLHours)
	} else {
		store = service.NewMemoryStore(cfg.Store.MaxProposals)
		slog.Info("proposal store initialized", "backend", "memory", "max_proposals", cfg.Store.MaxProposals)
	}

	// Optional document archive. The interface variable stays nil unless
	// archiving is enabled, so the handler can skip it with a nil check.
	var archive handler.DocumentArchive
	if cfg.Archive.Enabled {
		archiveSvc, err := service.NewArchiveService(&cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize archive service", "error", err)
			os.Exit(1)
		}
		if err := archiveSvc.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
		archive = archiveSvc
		slog.Info("document archive enabled", "bucket", cfg.Archive.Bucket)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	sowHandler := handler.NewSOWHandler(proposalSvc, store, archive, cfg)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Serve the upload page if it's present
	if _, err := os.Stat("./static/index.html"); err == nil {
		router.Static("/static", "./static")
		router.StaticFile("/", "./static/index.html")
	}

	// Health check endpoint
	router.GET("/health", sowHandler.Health)

	api := router.Group("/api")
	{
		api.GET("/health", sowHandler.Health)
		api.GET("/stats", sowHandler.Stats)
		api.POST("/auth/login", authHandler.Login)
	}

	// Processing routes, behind auth when enabled
	protected := api.Group("/")
	if cfg.Auth.Enabled {
		protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	}
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.POST("/sow/process", sowHandler.Process)
		protected.GET("/proposal/:thread_id/download", sowHandler.Download)
	}

	// Create server. Write timeout leaves headroom for a full poll cycle
	// plus extraction.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: time.Duration(cfg.Agent.MaxWaitSeconds+60) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
