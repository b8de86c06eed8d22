package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/macrolens/diettracker/config"
	"github.com/macrolens/diettracker/internal/delivery/cli"
	"github.com/macrolens/diettracker/internal/infrastructure/storage"
	"github.com/macrolens/diettracker/internal/logger"
	"github.com/macrolens/diettracker/internal/usecase"
)

// summary prints today's per-meal and daily totals from the configured store.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Keep stdout for the tables
	cfg.Log.Level = "warn"
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		zl.Fatal("failed to open storage", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	location, err := cfg.Tracker.Location()
	if err != nil {
		zl.Fatal("invalid timezone", zap.Error(err))
	}

	tracker := usecase.NewTrackerService(
		usecase.DefaultNutritionTable(zl),
		usecase.NewItemCatalog(store, usecase.BuiltInPlannedItems(),
			usecase.ItemCatalogConfig{MasterItemsKey: cfg.Storage.MasterItemsKey}, zl),
		usecase.NewDailyStateStore(store,
			usecase.DailyStateStoreConfig{Key: cfg.Storage.DailyStateKey, Location: location}, zl),
		cli.NewPrinter(os.Stdout),
		usecase.TrackerServiceConfig{},
		zl,
	)

	if err := tracker.Load(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}
