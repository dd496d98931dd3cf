package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kickon/kickon/internal/api"
	"github.com/kickon/kickon/internal/config"
	"github.com/kickon/kickon/internal/fetcher"
	"github.com/kickon/kickon/internal/logger"
	"github.com/kickon/kickon/internal/repository"
	"github.com/kickon/kickon/internal/service"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "kickon-api",
	})
	logger.SetDefaultLogger(appLogger)

	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	predictionRepo := repository.NewPredictionRepository(db)

	profileClient := fetcher.NewClient(&fetcher.Config{
		BaseURL:        cfg.Crawl.BaseURL,
		StartURL:       cfg.Crawl.StartURL,
		UserAgent:      cfg.Crawl.UserAgent,
		Competition:    cfg.Crawl.Competition,
		Season:         cfg.Crawl.Season,
		ConnectTimeout: cfg.Crawl.ConnectTimeout,
		ReadTimeout:    cfg.Crawl.ReadTimeout,
	}, appLogger)

	newsClient := fetcher.NewNewsClient(&fetcher.NewsConfig{
		FeedURL:     cfg.News.FeedURL,
		MaxArticles: cfg.News.MaxArticles,
	})

	predictService := service.NewPredictService(
		profileClient,
		service.NewModelClient(&cfg.Model),
		newsClient,
		service.NewClassifierService(&cfg.LLM, appLogger),
		cfg.Predict.Weight,
		predictionRepo,
		appLogger,
	)

	router := api.SetupRouter(predictService, &cfg.Server, appLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
