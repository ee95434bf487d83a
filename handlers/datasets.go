package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"media-intel/apperrors"
	"media-intel/export"
	"media-intel/filter"
	"media-intel/models"
)

// UploadDataset stores a multipart CSV upload and returns its metadata and
// filter options.
func (h *Handler) UploadDataset(c *gin.Context) {
	filename, data, err := h.readUpload(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.ingestor.Ingest(c.Request.Context(), filename, data)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Cached {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

func (h *Handler) ListDatasets(c *gin.Context) {
	datasets, err := h.ingestor.Datasets(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": datasets, "count": len(datasets)})
}

func (h *Handler) GetDataset(c *gin.Context) {
	ds, err := h.ingestor.Dataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (h *Handler) DeleteDataset(c *gin.Context) {
	if err := h.ingestor.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetRecords returns the records matching the query-string filters.
func (h *Handler) GetRecords(c *gin.Context) {
	sel, ok := h.bindSelection(c)
	if !ok {
		return
	}
	view, err := h.ingestor.View(c.Request.Context(), c.Param("id"), sel)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dataset_id": view.Dataset.ID,
		"filters":    filter.ParamsFrom(sel),
		"count":      len(view.Records),
		"empty":      view.Empty(),
		"records":    view.Records,
	})
}

// GetAggregates returns the chart and summary tables for the query-string
// filters. An empty selection is reported with "empty": true.
func (h *Handler) GetAggregates(c *gin.Context) {
	sel, ok := h.bindSelection(c)
	if !ok {
		return
	}
	view, err := h.ingestor.View(c.Request.Context(), c.Param("id"), sel)
	if err != nil {
		h.respondError(c, err)
		return
	}

	body := gin.H{
		"dataset_id": view.Dataset.ID,
		"filters":    filter.ParamsFrom(sel),
		"options":    view.Options,
		"empty":      view.Empty(),
		"date_range": view.Aggregates.DateRangeText(),
		"aggregates": view.Aggregates,
	}
	if view.Empty() {
		body["message"] = apperrors.ErrNoMatchingData.Error()
	}
	c.JSON(http.StatusOK, body)
}

// ExportWorkbook downloads the filtered records and tables as XLSX.
func (h *Handler) ExportWorkbook(c *gin.Context) {
	sel, ok := h.bindSelection(c)
	if !ok {
		return
	}
	view, err := h.ingestor.View(c.Request.Context(), c.Param("id"), sel)
	if err != nil {
		h.respondError(c, err)
		return
	}

	buf, err := export.Workbook(view.Records, view.Aggregates)
	if err != nil {
		h.respondError(c, err)
		return
	}
	name := view.Dataset.ID
	if len(name) > 12 {
		name = name[:12]
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="media-intel-%s.xlsx"`, name))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// bindSelection reads filter parameters from the query string. On failure it
// writes a 400 response and returns false.
func (h *Handler) bindSelection(c *gin.Context) (models.FilterSelection, bool) {
	var params filter.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidSelection, err))
		return models.FilterSelection{}, false
	}
	sel, err := params.Selection()
	if err != nil {
		h.respondError(c, err)
		return models.FilterSelection{}, false
	}
	return sel, true
}
