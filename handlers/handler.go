// Package handlers serves the dashboard page and the JSON API.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"media-intel/apperrors"
	"media-intel/logger"
	"media-intel/models"
	"media-intel/services"
	"media-intel/summary"
)

// Ingestor is the dataset side of the application.
type Ingestor interface {
	Ingest(ctx context.Context, filename string, data []byte) (*services.Ingestion, error)
	View(ctx context.Context, id string, sel models.FilterSelection) (*services.View, error)
	Datasets(ctx context.Context) ([]models.Dataset, error)
	Dataset(ctx context.Context, id string) (*models.Dataset, error)
	Remove(ctx context.Context, id string) error
}

// Summarizer generates campaign summaries.
type Summarizer interface {
	Generate(ctx context.Context, datasetID string, sel models.FilterSelection, lang string) (*summary.Result, error)
	InProgress() bool
}

// Handler holds the dependencies of every route.
type Handler struct {
	ingestor       Ingestor
	summaries      Summarizer
	maxUploadBytes int64
	language       string
	logger         *zap.Logger
}

// New creates a Handler. language is the default summary language.
func New(ing Ingestor, sum Summarizer, maxUploadBytes int64, language string, l *zap.Logger) *Handler {
	return &Handler{
		ingestor:       ing,
		summaries:      sum,
		maxUploadBytes: maxUploadBytes,
		language:       language,
		logger:         logger.Component(l, "http"),
	}
}

// readUpload reads the "file" form field, bounded by maxUploadBytes.
func (h *Handler) readUpload(c *gin.Context) (string, []byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, apperrors.New(http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
				fmt.Sprintf("file exceeds the %d byte limit", h.maxUploadBytes))
		}
		return "", nil, apperrors.New(http.StatusBadRequest, "MISSING_FILE", "a CSV file is required in the \"file\" field")
	}
	data, err := readFile(fh)
	if err != nil {
		return "", nil, err
	}
	return fh.Filename, data, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// respondError writes err as an apperrors.APIError body.
func (h *Handler) respondError(c *gin.Context, err error) {
	apiErr := apperrors.FromError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", RequestIDFrom(c)),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
}
