package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/entryhub/internal/api"
	"github.com/timmy/entryhub/internal/config"
	"github.com/timmy/entryhub/internal/logger"
	"github.com/timmy/entryhub/internal/repository"
	"github.com/timmy/entryhub/internal/service"
	"github.com/timmy/entryhub/internal/storage"
)

func main() {
	appLogger := logger.NewFromEnv(nil)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// CONFIG_PATH selects the config file in deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	defer repository.Close(db)

	ctx := context.Background()

	objectStorage, err := storage.NewStorageFromConfig(&cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	ingestService := service.NewIngestService(objectStorage, &service.IngestConfig{
		KeySuffix: cfg.Ingest.KeySuffix,
	})
	datasetService := service.NewDatasetService(repository.NewDatasetRepository(db))
	entryService := service.NewEntryService(repository.NewEntryRepository(db), ingestService, &service.EntryConfig{
		PageSize: cfg.Pagination.EffectivePageSize(),
	})

	router := api.SetupRouter(&api.Services{
		Datasets: datasetService,
		Entries:  entryService,
		DB:       db,
	}, &cfg.Server, appLogger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":      cfg.Server.Port,
			"mode":      cfg.Server.Mode,
			"driver":    cfg.Database.Driver,
			"storage":   cfg.Storage.Type,
			"bucket":    cfg.Storage.Bucket,
			"page_size": entryService.PageSize(),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
