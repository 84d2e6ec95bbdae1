package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/entryhub/internal/service"
)

// DatasetHandler serves the dataset registry.
type DatasetHandler struct {
	datasets *service.DatasetService
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(datasets *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasets: datasets}
}

// CreateDatasetRequest is the body of POST /datasets.
type CreateDatasetRequest struct {
	Name string `json:"name"`
}

// CreateDataset handles POST /datasets.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes 201 with the dataset).
func (h *DatasetHandler) CreateDataset(c *gin.Context) {
	var req CreateDatasetRequest
	if !bindJSON(c, &req) {
		return
	}

	dataset, err := h.datasets.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dataset)
}

// ListDatasets handles GET /datasets.
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.datasets.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, datasets)
}

// ListDatasetSummaries handles GET /datasettt: every dataset with its entry count.
func (h *DatasetHandler) ListDatasetSummaries(c *gin.Context) {
	summaries, err := h.datasets.ListWithCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}
