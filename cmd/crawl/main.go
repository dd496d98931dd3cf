package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kickon/kickon/internal/checkpoint"
	"github.com/kickon/kickon/internal/config"
	"github.com/kickon/kickon/internal/dataset"
	"github.com/kickon/kickon/internal/fetcher"
	"github.com/kickon/kickon/internal/logger"
	"github.com/kickon/kickon/internal/repository"
	"github.com/kickon/kickon/internal/service"
	"github.com/kickon/kickon/internal/storage"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "kickon-crawl",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := flag.String("config", "", "Path to config file")
	reset := flag.Bool("reset", false, "Reset crawl progress to the first team")
	all := flag.Bool("all", false, "Keep crawling team by team until every team is done")
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
	if s3st, ok := objectStorage.(*storage.S3Storage); ok {
		if err := s3st.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	runRepo := repository.NewRunRepository(db)

	client := fetcher.NewClient(&fetcher.Config{
		BaseURL:        cfg.Crawl.BaseURL,
		StartURL:       cfg.Crawl.StartURL,
		UserAgent:      cfg.Crawl.UserAgent,
		Competition:    cfg.Crawl.Competition,
		Season:         cfg.Crawl.Season,
		ConnectTimeout: cfg.Crawl.ConnectTimeout,
		ReadTimeout:    cfg.Crawl.ReadTimeout,
	}, appLogger)

	crawlService := service.NewCrawlService(
		client,
		checkpoint.NewStore(objectStorage, cfg.Crawl.CheckpointKey),
		dataset.NewWriter(objectStorage, cfg.Crawl.RawPrefix),
		runRepo,
		service.CrawlConfig{
			BaseSeason:   cfg.Crawl.BaseSeason,
			TeamRankings: cfg.Crawl.TeamRankings,
		},
		appLogger,
	)

	if *reset {
		if err := crawlService.Reset(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to reset crawl progress")
		}
		appLogger.Info("Crawl progress reset")
	}

	for {
		res, err := crawlService.Run(ctx)
		if errors.Is(err, service.ErrCrawlDone) {
			appLogger.Info("All teams processed")
			return
		}
		if err != nil {
			appLogger.WithError(err).Error("Crawl run failed, progress saved for resume")
			os.Exit(1)
		}

		appLogger.WithFields(logger.Fields{
			logger.FieldTeam:  res.TeamName,
			logger.FieldCount: res.PlayersProcessed,
		}).Info("Team crawled")

		if !*all || res.Done {
			return
		}
	}
}
