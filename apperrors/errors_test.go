package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"data format", NewDataFormatError("not valid UTF-8", nil), http.StatusUnprocessableEntity, "DATA_FORMAT_ERROR"},
		{"wrapped data format", fmt.Errorf("ingest: %w", NewDataFormatError("empty file", nil)), http.StatusUnprocessableEntity, "DATA_FORMAT_ERROR"},
		{"llm", &LLMCallError{Op: "gemini", StatusCode: 500}, http.StatusBadGateway, "LLM_CALL_ERROR"},
		{"no data", ErrNoMatchingData, http.StatusUnprocessableEntity, "NO_MATCHING_DATA"},
		{"in progress", ErrSummaryInProgress, http.StatusConflict, "SUMMARY_IN_PROGRESS"},
		{"not found", fmt.Errorf("load abc: %w", ErrDatasetNotFound), http.StatusNotFound, "DATASET_NOT_FOUND"},
		{"selection", fmt.Errorf("%w: bad date", ErrInvalidSelection), http.StatusBadRequest, "INVALID_SELECTION"},
		{"api error passthrough", New(http.StatusRequestEntityTooLarge, "TOO_LARGE", "too large"), http.StatusRequestEntityTooLarge, "TOO_LARGE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.ErrorCode)
		})
	}
}

func TestLLMCallErrorCarriesRawResponse(t *testing.T) {
	err := &LLMCallError{Op: "gemini", StatusCode: 200, RawResponse: `{"candidates":[]}`, Err: errors.New("missing text field")}

	assert.True(t, IsLLMCall(fmt.Errorf("summary: %w", err)))
	assert.Contains(t, err.Error(), "status 200")
	assert.Contains(t, err.Error(), "missing text field")

	apiErr := FromError(err)
	assert.Equal(t, map[string]string{"raw_response": `{"candidates":[]}`}, apiErr.Details)
}

func TestDataFormatErrorUnwrap(t *testing.T) {
	inner := errors.New("bare quote")
	err := NewDataFormatError("csv parse", inner)

	assert.True(t, IsDataFormat(err))
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "data format error: csv parse: bare quote", err.Error())
}
