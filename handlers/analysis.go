package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"media-intel/apperrors"
	"media-intel/filter"
)

// SummaryRequest is the body of POST /api/datasets/:id/summary.
type SummaryRequest struct {
	filter.Params
	Language string `json:"language" binding:"omitempty,oneof=id en"`
}

// GenerateSummary asks the language model for a campaign summary of the
// filtered dataset.
func (h *Handler) GenerateSummary(c *gin.Context) {
	var request SummaryRequest
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidSelection, err))
		return
	}
	sel, err := request.Selection()
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.summaries.Generate(c.Request.Context(), c.Param("id"), sel, request.Language)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SummaryStatus reports whether a summary is being generated.
func (h *Handler) SummaryStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"in_progress": h.summaries.InProgress()})
}
