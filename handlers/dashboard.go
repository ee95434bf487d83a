package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"media-intel/apperrors"
	"media-intel/filter"
	"media-intel/models"
	"media-intel/services"
	"media-intel/store"
	"media-intel/summary"
)

// Empty states shown instead of charts.
const (
	StateNoUpload   = "no_upload"
	StateNoValidRow = "no_valid_data"
	StateNoMatch    = "no_matching_data"
)

type DashboardData struct {
	Language    string
	DatasetID   string
	Dataset     *models.Dataset
	Datasets    []models.Dataset
	Synthesized []string
	Filters     filter.Params
	Options     models.FilterOptions
	View        *services.View
	State       string
	Error       string
	SummaryBusy bool
}

// Dashboard renders the page for ?dataset=<id> and the filter query. Without a
// dataset parameter the most recently used dataset is shown.
func (h *Handler) Dashboard(c *gin.Context) {
	var params filter.Params
	bindErr := c.ShouldBindQuery(&params)
	language := c.DefaultQuery("lang", h.language)

	data := h.loadDashboard(c, c.Query("dataset"), params, language)
	status := http.StatusOK
	if bindErr != nil && data.Error == "" {
		data.Error = apperrors.ErrInvalidSelection.Error()
		status = http.StatusBadRequest
	}
	h.renderDashboard(c, status, data)
}

// loadDashboard collects everything the page shows. Selection and lookup errors
// are reported in DashboardData.Error rather than failing the page.
func (h *Handler) loadDashboard(c *gin.Context, datasetID string, params filter.Params, language string) *DashboardData {
	ctx := c.Request.Context()
	data := &DashboardData{
		Language:    language,
		DatasetID:   datasetID,
		Filters:     params,
		State:       StateNoUpload,
		SummaryBusy: h.summaries.InProgress(),
	}

	datasets, err := h.ingestor.Datasets(ctx)
	if err != nil {
		h.logger.Error("list datasets", zap.Error(err))
		data.Error = apperrors.FromError(err).Message
		return data
	}
	data.Datasets = datasets
	if data.DatasetID == "" && len(datasets) > 0 {
		data.DatasetID = datasets[0].ID
	}
	if data.DatasetID == "" {
		return data
	}

	sel, err := params.Selection()
	if err != nil {
		data.Error = err.Error()
		sel = models.FilterSelection{}
		data.Filters = filter.Params{}
	}

	view, err := h.ingestor.View(ctx, data.DatasetID, sel)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDatasetNotFound) {
			h.logger.Error("load dataset", zap.String("dataset", data.DatasetID), zap.Error(err))
		}
		data.Error = apperrors.FromError(err).Message
		data.DatasetID = ""
		return data
	}

	data.Dataset = view.Dataset
	data.Synthesized = store.SplitColumns(view.Dataset.Synthesized)
	data.Options = view.Options
	data.View = view
	switch {
	case view.Dataset.RowCount == 0:
		data.State = StateNoValidRow
	case view.Empty():
		data.State = StateNoMatch
	default:
		data.State = ""
	}
	return data
}

func (h *Handler) renderDashboard(c *gin.Context, status int, data *DashboardData) {
	c.HTML(status, "dashboard.html", data)
}

// dashboardURL links back to the dashboard with the given dataset and filters.
func dashboardURL(datasetID string, params filter.Params, language string) string {
	q := url.Values{}
	if datasetID != "" {
		q.Set("dataset", datasetID)
	}
	set := func(key, value string) {
		if value != "" && value != models.All {
			q.Set(key, value)
		}
	}
	set("platform", params.Platform)
	set("sentiment", params.Sentiment)
	set("media_type", params.MediaType)
	set("location", params.Location)
	set("start_date", params.StartDate)
	set("end_date", params.EndDate)
	if language != "" && summary.SupportedLanguage(language) {
		q.Set("lang", language)
	}
	if len(q) == 0 {
		return "/dashboard"
	}
	return "/dashboard?" + q.Encode()
}
