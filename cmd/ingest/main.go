package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/entryhub/internal/config"
	"github.com/timmy/entryhub/internal/logger"
	"github.com/timmy/entryhub/internal/repository"
	"github.com/timmy/entryhub/internal/service"
	"github.com/timmy/entryhub/internal/source"
	"github.com/timmy/entryhub/internal/source/localdir"
	"github.com/timmy/entryhub/internal/source/manifest"
	"github.com/timmy/entryhub/internal/storage"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "entryhub-ingest",
	})
	logger.SetDefaultLogger(appLogger)

	datasetID := flag.Int64("dataset", 0, "Dataset to import into (required)")
	sourceType := flag.String("source", "localdir", "Source type: localdir or manifest")
	path := flag.String("path", "", "Directory or manifest file; defaults to the configured source path")
	limit := flag.Int("limit", 0, "Maximum number of items to import, 0 for all")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *datasetID <= 0 {
		appLogger.Fatal("-dataset is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	var src source.Source
	switch *sourceType {
	case "localdir":
		dir := *path
		if dir == "" {
			dir = cfg.Sources.LocalDir.Path
		}
		src = localdir.NewAdapter(dir)
	case "manifest":
		file := *path
		if file == "" {
			file = cfg.Sources.Manifest.Path
		}
		src = manifest.NewAdapter(&manifest.Config{
			Path:            file,
			DownloadTimeout: cfg.Sources.Manifest.DownloadTimeout,
		})
	default:
		appLogger.WithField(logger.FieldSource, *sourceType).Fatal("Unknown source type")
	}

	appLogger.WithFields(logger.Fields{
		logger.FieldSource:    src.GetDisplayName(),
		logger.FieldDatasetID: *datasetID,
		"limit":               *limit,
	}).Info("Starting import")

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	defer repository.Close(db)

	ctx, cancel := context.WithCancel(appLogger.WithContext(context.Background()))
	defer cancel()

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
	importService := service.NewImportService(datasetService, entryService, ingestService, &service.ImportConfig{
		Workers:   cfg.Ingest.Workers,
		BatchSize: cfg.Ingest.BatchSize,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	stats, err := importService.ImportFromSource(ctx, *datasetID, src, *limit)
	if err != nil {
		appLogger.WithError(err).Fatal("Import failed")
	}

	appLogger.WithFields(logger.Fields{
		"total":   stats.TotalItems,
		"created": stats.CreatedItems,
		"failed":  stats.FailedItems,
	}).Info("Import finished")

	if stats.FailedItems > 0 {
		repository.Close(db)
		os.Exit(1)
	}
}
