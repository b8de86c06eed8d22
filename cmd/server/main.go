package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/macrolens/diettracker/config"
	httpDelivery "github.com/macrolens/diettracker/internal/delivery/http"
	"github.com/macrolens/diettracker/internal/infrastructure/realtime"
	"github.com/macrolens/diettracker/internal/infrastructure/storage"
	"github.com/macrolens/diettracker/internal/logger"
	"github.com/macrolens/diettracker/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("starting diet tracker",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Type),
	)

	// Initialize infrastructure dependencies
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		zl.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zl.Warn("failed to close storage", zap.Error(err))
		}
	}()

	location, err := cfg.Tracker.Location()
	if err != nil {
		zl.Fatal("invalid timezone", zap.Error(err))
	}

	hub := realtime.NewHub(httpDelivery.OriginChecker(cfg.Server.AllowedOrigins), zl)
	defer hub.Close()

	// Initialize usecase layer
	table := usecase.DefaultNutritionTable(zl)
	catalog := usecase.NewItemCatalog(
		store,
		usecase.BuiltInPlannedItems(),
		usecase.ItemCatalogConfig{MasterItemsKey: cfg.Storage.MasterItemsKey},
		zl,
	)
	days := usecase.NewDailyStateStore(
		store,
		usecase.DailyStateStoreConfig{Key: cfg.Storage.DailyStateKey, Location: location},
		zl,
	)
	tracker := usecase.NewTrackerService(table, catalog, days, hub, usecase.TrackerServiceConfig{}, zl)

	if err := tracker.Load(context.Background()); err != nil {
		zl.Warn("starting with partially loaded state", zap.Error(err))
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(tracker, usecase.NewUnitFormatter(zl), hub, zl)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, zl)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
