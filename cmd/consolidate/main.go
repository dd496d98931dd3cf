package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/kickon/kickon/internal/config"
	"github.com/kickon/kickon/internal/dataset"
	"github.com/kickon/kickon/internal/logger"
	"github.com/kickon/kickon/internal/storage"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "kickon-consolidate",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	consolidator := dataset.NewConsolidator(objectStorage, &dataset.ConsolidatorConfig{
		RawPrefix:     cfg.Consolidate.RawPrefix,
		ArchivePrefix: cfg.Consolidate.ArchivePrefix,
		CombinedKey:   cfg.Consolidate.CombinedKey,
	}, appLogger)

	stats, err := consolidator.Run(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Consolidation failed")
	}

	appLogger.WithFields(logger.Fields{
		"partitions": stats.PartitionsProcessed,
		"rows":       stats.RowsMerged,
	}).Info("Consolidation finished")
}
