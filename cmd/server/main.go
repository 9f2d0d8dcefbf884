package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MyDadsSoft/recoverys/internal/application/intake"
	"github.com/MyDadsSoft/recoverys/internal/application/notify"
	"github.com/MyDadsSoft/recoverys/internal/application/reply"
	"github.com/MyDadsSoft/recoverys/internal/domain/catalog"
	"github.com/MyDadsSoft/recoverys/internal/infrastructure/config"
	"github.com/MyDadsSoft/recoverys/internal/infrastructure/gateway"
	"github.com/MyDadsSoft/recoverys/internal/infrastructure/logger"
	"github.com/MyDadsSoft/recoverys/internal/infrastructure/persistence/jsonledger"
	"github.com/MyDadsSoft/recoverys/internal/interfaces/http/handler"
	"github.com/MyDadsSoft/recoverys/internal/interfaces/http/middleware"
	"github.com/MyDadsSoft/recoverys/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Recoverys backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize the order ledger
	store := jsonledger.NewStore(cfg.Ledger.Path, log)
	if err := store.Load(); err != nil {
		log.Fatal("Failed to load order ledger", zap.Error(err))
	}
	log.Info("Order ledger loaded", zap.String("path", cfg.Ledger.Path))

	// Initialize the Discord gateway
	gw, err := gateway.NewDiscord(cfg.Discord.Token, log)
	if err != nil {
		log.Fatal("Failed to create Discord gateway", zap.Error(err))
	}
	if err := gw.Open(); err != nil {
		// Order intake keeps working without the gateway; notifications
		// queue and replies return transport-unavailable until it connects.
		log.Error("Failed to connect Discord gateway", zap.Error(err))
	}
	defer func() {
		if err := gw.Close(); err != nil {
			log.Error("Error closing Discord gateway", zap.Error(err))
		}
	}()

	// Initialize application services
	cat := catalog.Default()
	notifier := notify.NewNotifier(gw, cfg.Discord.StaffChannelID, log)
	intakeService := intake.NewService(store, cat, notifier, log)
	coordinator := reply.NewCoordinator(store, gw, notifier, cfg.Discord.StaffChannelID, cfg.Discord.AllowedRoleIDs, log)

	// Consume gateway events until shutdown
	eventCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()
	go coordinator.Run(eventCtx)

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(intakeService)
	replyHandler := handler.NewReplyHandler(coordinator)
	healthHandler := handler.NewHealthHandler(gw)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Versioned API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Submit)
	orderRoutes.GET("", orderHandler.List)

	replyRoutes := router.NewDomainGroup("replies", "/replies")
	replyRoutes.POST("", replyHandler.Send)

	r.Register(orderRoutes).
		Register(replyRoutes)
	r.Setup()

	// Legacy order-form endpoint used by the public site
	engine.POST("/api/order", orderHandler.Submit)

	engine.GET("/healthz", healthHandler.Check)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
