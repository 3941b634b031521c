package main

import (
	"context"
	"log"
	"time"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/core/config"
	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/server"
	orderadapter "fulfillment-tracker/internal/features/orders/adapters"
	orderhandler "fulfillment-tracker/internal/features/orders/handler"
	orderstore "fulfillment-tracker/internal/features/orders/store"
	trackerhandler "fulfillment-tracker/internal/features/tracker/handler"
	trackerservice "fulfillment-tracker/internal/features/tracker/service"

	"go.uber.org/zap"
)

// @title Fulfillment Tracker API
// @version 1.0
// @description Order fulfillment status tracking for the marketplace seller dashboard.
// @contact.name API Support
// @contact.email support@fulfillmenttracker.io
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()

	// Initialize Marketplace Adapter and run Health Check
	marketplace := orderadapter.NewMarketplaceAdapter(cfg.Marketplace)
	healthCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if err := marketplace.HealthCheck(healthCtx); err != nil {
		cancel()
		l.Fatal("Marketplace Health Check Failed", zap.Error(err))
	}
	cancel()
	l.Info("Marketplace connection verified")

	// Optional Redis-backed order snapshot for warm starts
	var snapshots orderstore.SnapshotRepository
	if cfg.Cache.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Cache.RedisURL)
		if err != nil {
			l.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		if err := redisCache.Ping(ctx); err != nil {
			l.Fatal("Redis ping failed", zap.Error(err))
		}
		snapshots = orderadapter.NewRedisSnapshotRepository(redisCache, cfg.Cache.SnapshotTTL())
		l.Info("Order snapshot cache enabled")
	}

	// Initialize Order Store
	st := orderstore.NewOrdersStore(marketplace, snapshots)
	st.WarmStart(ctx)
	if err := st.Refresh(ctx); err != nil {
		l.Warn("Initial order refresh failed, serving cached snapshot", zap.Error(err))
	}

	// Initialize Tracker Service & Handlers
	trackerSvc := trackerservice.NewTrackerService(marketplace, st, cfg.Tracker)
	trackerHdl := trackerhandler.NewTrackerHandler(trackerSvc)
	ordersHdl := orderhandler.NewOrdersHandler(st)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/orders", ordersHdl.ListOrders)
	srv.App.Post("/orders/refresh", ordersHdl.RefreshOrders)
	srv.App.Get("/orders/:number/progress", trackerHdl.GetProgress)
	srv.App.Post("/orders/:number/track", trackerHdl.StartTracking)
	srv.App.Delete("/orders/:number/track", trackerHdl.StopTracking)
	srv.App.Post("/orders/:number/advance", trackerHdl.AdvanceStatus)
	srv.App.Post("/orders/:number/items/:itemId/confirm", trackerHdl.ConfirmItem)
	srv.App.Post("/orders/:number/mark-sent", trackerHdl.MarkSent)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
