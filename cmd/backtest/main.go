package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kickon/kickon/internal/config"
	"github.com/kickon/kickon/internal/fetcher"
	"github.com/kickon/kickon/internal/logger"
	"github.com/kickon/kickon/internal/service"
	"github.com/kickon/kickon/internal/storage"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "kickon-backtest",
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

	var cutoff time.Time
	if cfg.Backtest.JoinedCutoff != "" {
		cutoff, err = time.Parse("2006-01-02", cfg.Backtest.JoinedCutoff)
		if err != nil {
			appLogger.WithError(err).Fatal("Invalid backtest joined_cutoff, want YYYY-MM-DD")
		}
	}

	newsClient := fetcher.NewNewsClient(&fetcher.NewsConfig{
		FeedURL:     cfg.News.FeedURL,
		MaxArticles: cfg.News.MaxArticles,
	})

	backtest := service.NewBacktestService(
		objectStorage,
		service.NewModelClient(&cfg.Model),
		newsClient,
		service.NewClassifierService(&cfg.LLM, appLogger),
		service.BacktestConfig{
			ArchivePrefix: cfg.Backtest.ArchivePrefix,
			Weight:        cfg.Backtest.Weight,
			Threshold:     cfg.Backtest.Threshold,
			JoinedCutoff:  cutoff,
		},
		appLogger,
	)

	result, err := backtest.Run(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Backtest failed")
	}

	for _, fr := range result.Files {
		fmt.Printf("%s: accuracy %.3f (%d/%d rows, %d skipped)\n",
			fr.Key, fr.Accuracy(), fr.Correct, fr.Total, fr.Skipped)
	}
	fmt.Printf("overall: accuracy %.3f (%d/%d rows, %d skipped)\n",
		result.Accuracy(), result.Correct, result.Total, result.Skipped)
}
