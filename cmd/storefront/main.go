package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/api"
	"github.com/printatelier/storefront/internal/blob"
	"github.com/printatelier/storefront/internal/catalog"
	"github.com/printatelier/storefront/internal/database"
	"github.com/printatelier/storefront/internal/events"
	"github.com/printatelier/storefront/internal/fulfillment"
	"github.com/printatelier/storefront/internal/logger"
	"github.com/printatelier/storefront/internal/metrics"
	middlewares "github.com/printatelier/storefront/internal/middleware"
	"github.com/printatelier/storefront/internal/orders"
	"github.com/printatelier/storefront/internal/ratelimit"
	"github.com/printatelier/storefront/internal/store"
	"github.com/printatelier/storefront/internal/upscale"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting storefront application",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close(ctx)

	// Initialize store
	productStore := store.New(db)
	if pg, ok := productStore.(*store.PostgresStore); ok {
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure schema", "error", err)
		}
	}

	// Blob storage for upscaled renditions
	blobs, err := blob.NewFSStore(cfg.Blob.Dir, cfg.Blob.PublicBaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage", "error", err)
	}

	// Provider clients
	catalogAPI := catalog.NewStripeAPI(cfg.Payments)
	sessionAPI := orders.NewStripeSessionAPI()
	orderClient := fulfillment.NewClient(cfg.Fulfillment)
	upscaleClient := upscale.NewClient(cfg.Upscale)

	// Domain components
	provisioner := catalog.NewProvisioner(catalogAPI, productStore, cfg.Payments)
	resolver := orders.NewResolver(sessionAPI, productStore)
	submitter := fulfillment.NewSubmitter(orderClient, productStore, cfg.Fulfillment)
	orchestrator := upscale.NewOrchestrator(upscaleClient, upscaleClient, blobs, productStore, cfg.Upscale)

	// Product-created trigger bus
	bus := events.NewBus(cfg.Events)
	if err := bus.SubscribeProductCreated("catalog", provisioner.HandleProductCreated); err != nil {
		logger.Fatal("Failed to subscribe catalog provisioner", "error", err)
	}
	if err := bus.SubscribeProductCreated("upscale", orchestrator.HandleProductCreated); err != nil {
		logger.Fatal("Failed to subscribe upscale orchestrator", "error", err)
	}

	// Webhook rate limiter (optional, Redis-backed)
	var limiter *ratelimit.Manager
	if cfg.Redis.URL != "" {
		limiter, err = ratelimit.NewManager(cfg.Redis.URL, cfg.Redis.WebhookRPM)
		if err != nil {
			logger.Fatal("Failed to initialize rate limiter", "error", err)
		}
		defer limiter.Close()
	}

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)

	// Initialize API handlers
	apiHandler := api.NewHandler(
		productStore, db, resolver, submitter, bus.PublishProductCreated, limiter,
		cfg.Payments.WebhookSecret, cfg.Events.AdminSecret, blobs.Dir(),
		Version, BuildTime, GitCommit,
	)
	apiHandler.RegisterRoutes(r)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Let in-flight event handlers finish
	bus.Wait()

	logger.Info("Server exited")
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
