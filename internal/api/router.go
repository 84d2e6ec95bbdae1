package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/entryhub/internal/api/handler"
	"github.com/timmy/entryhub/internal/api/middleware"
	"github.com/timmy/entryhub/internal/config"
	"github.com/timmy/entryhub/internal/logger"
	"github.com/timmy/entryhub/internal/service"
	"gorm.io/gorm"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Datasets *service.DatasetService
	Entries  *service.EntryService
	// DB is pinged by /health; nil skips the check.
	DB *gorm.DB
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc *Services, cfg *config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(svc.DB)
	datasetHandler := handler.NewDatasetHandler(svc.Datasets)
	entryHandler := handler.NewEntryHandler(svc.Entries)

	r.GET("/health", healthHandler.Health)

	datasets := r.Group("/datasets")
	{
		datasets.POST("", datasetHandler.CreateDataset)
		datasets.GET("", datasetHandler.ListDatasets)
		datasets.GET("/:id/entries", entryHandler.ListDatasetEntries)
		datasets.POST("/:id/entries", entryHandler.CreateDatasetEntry)
		datasets.GET("/:id/pageEntry", entryHandler.PageDatasetEntries)
	}

	// Summary listing keeps its historical path.
	r.GET("/datasettt", datasetHandler.ListDatasetSummaries)

	entries := r.Group("/entries")
	{
		entries.GET("", entryHandler.ListEntries)
		entries.POST("", entryHandler.CreateEntry)
		entries.GET("/:id", entryHandler.GetEntry)
		entries.PUT("/:id", entryHandler.UpdateEntry)
	}

	return r
}
