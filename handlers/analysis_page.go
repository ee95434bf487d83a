package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"media-intel/apperrors"
	"media-intel/filter"
)

// UploadPage ingests a CSV posted from the dashboard form and redirects to it.
// A malformed file renders the dashboard with the error and no data.
func (h *Handler) UploadPage(c *gin.Context) {
	filename, data, err := h.readUpload(c)
	language := c.DefaultPostForm("lang", h.language)
	if err == nil {
		ing, ingErr := h.ingestor.Ingest(c.Request.Context(), filename, data)
		if ingErr == nil {
			c.Redirect(http.StatusSeeOther, dashboardURL(ing.Dataset.ID, filter.Params{}, language))
			return
		}
		err = ingErr
	}

	apiErr := apperrors.FromError(err)
	page := h.loadDashboard(c, "", filter.Params{}, language)
	page.Error = apiErr.Message
	if apperrors.IsDataFormat(err) {
		page.State = StateNoValidRow
		page.DatasetID = ""
		page.Dataset = nil
		page.View = nil
	}
	h.renderDashboard(c, apiErr.StatusCode, page)
}

// GenerateSummaryPage generates a summary for the filters posted from the
// dashboard form, then redirects back to the same view.
func (h *Handler) GenerateSummaryPage(c *gin.Context) {
	datasetID := c.Param("dataset_id")
	language := c.DefaultPostForm("lang", h.language)

	var params filter.Params
	if err := c.ShouldBind(&params); err != nil {
		page := h.loadDashboard(c, datasetID, filter.Params{}, language)
		page.Error = apperrors.ErrInvalidSelection.Error()
		h.renderDashboard(c, http.StatusBadRequest, page)
		return
	}

	sel, err := params.Selection()
	if err == nil {
		_, err = h.summaries.Generate(c.Request.Context(), datasetID, sel, language)
	}
	if err != nil {
		apiErr := apperrors.FromError(err)
		page := h.loadDashboard(c, datasetID, params, language)
		page.Error = apiErr.Message
		h.renderDashboard(c, apiErr.StatusCode, page)
		return
	}

	c.Redirect(http.StatusSeeOther, dashboardURL(datasetID, params, language))
}
