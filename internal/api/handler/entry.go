package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/entryhub/internal/domain"
	"github.com/timmy/entryhub/internal/logger"
	"github.com/timmy/entryhub/internal/service"
)

const (
	msgEntryAdded   = "Entry added successfully"
	msgEntryUpdated = "Entry updated successfully"
)

// EntryHandler serves entry creation, listing, pagination and updates.
type EntryHandler struct {
	entries *service.EntryService
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(entries *service.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// CreateEntryResponse is returned by both entry creation routes.
type CreateEntryResponse struct {
	Message string `json:"message"`
	ImageID int64  `json:"image_id"`
}

// UpdateEntryResponse is returned by PUT /entries/:id.
type UpdateEntryResponse struct {
	Message      string `json:"message"`
	RowsAffected int64  `json:"rows_affected"`
}

// CreateDatasetEntry handles POST /datasets/:id/entries.
// The body's file_url is an inline base64 payload; the dataset comes from the path.
func (h *EntryHandler) CreateDatasetEntry(c *gin.Context) {
	datasetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var fields domain.EntryFields
	if !bindJSON(c, &fields) {
		return
	}

	entry, err := h.entries.CreateInDataset(c.Request.Context(), datasetID, &fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateEntryResponse{Message: msgEntryAdded, ImageID: entry.ID})
}

// ListDatasetEntries handles GET /datasets/:id/entries.
func (h *EntryHandler) ListDatasetEntries(c *gin.Context) {
	datasetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.entries.ListByDataset(c.Request.Context(), datasetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// PageDatasetEntries handles GET /datasets/:id/pageEntry?page=N.
// A missing page means 1. Every returned entry carries totalPages.
func (h *EntryHandler) PageDatasetEntries(c *gin.Context) {
	datasetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, domain.InvalidInput("parse page", "page must be an integer, got %q", raw))
		return
	}

	result, err := h.entries.Page(c.Request.Context(), datasetID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Flatten())
}

// ListEntries handles GET /entries.
func (h *EntryHandler) ListEntries(c *gin.Context) {
	entries, err := h.entries.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// CreateEntry handles POST /entries. file_url is stored as given.
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var fields domain.EntryFields
	if !bindJSON(c, &fields) {
		return
	}

	entry, err := h.entries.Create(c.Request.Context(), &fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateEntryResponse{Message: msgEntryAdded, ImageID: entry.ID})
}

// GetEntry handles GET /entries/:id.
func (h *EntryHandler) GetEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.entries.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateEntry handles PUT /entries/:id, a full overwrite.
// Updating a missing entry answers 200 with rows_affected 0.
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var fields domain.EntryFields
	if !bindJSON(c, &fields) {
		return
	}

	rows, err := h.entries.Update(c.Request.Context(), id, &fields)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == 0 {
		logger.CtxInfo(c.Request.Context(), "No entry updated: image_id=%d", id)
	}
	c.JSON(http.StatusOK, UpdateEntryResponse{Message: msgEntryUpdated, RowsAffected: rows})
}
