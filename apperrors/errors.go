// Package apperrors defines the error taxonomy of the dashboard and maps it to
// HTTP responses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoMatchingData means the filter selection matched nothing. Views show an
	// empty state; summary generation refuses to call the model.
	ErrNoMatchingData = errors.New("no data matches the selected filters")
	// ErrSummaryInProgress is returned while another summary is being generated.
	ErrSummaryInProgress = errors.New("a summary is already being generated")
	// ErrDatasetNotFound is returned for unknown or evicted dataset IDs.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrInvalidSelection wraps malformed filter input.
	ErrInvalidSelection = errors.New("invalid filter selection")
)

// DataFormatError reports an upload that could not be read as CSV.
type DataFormatError struct {
	Reason string
	Err    error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data format error: %s: %v", e.Reason, e.Err)
	}
	return "data format error: " + e.Reason
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// NewDataFormatError builds a DataFormatError.
func NewDataFormatError(reason string, err error) *DataFormatError {
	return &DataFormatError{Reason: reason, Err: err}
}

// LLMCallError reports a failed call to the language model. RawResponse holds
// the response body when one was received.
type LLMCallError struct {
	Op          string
	StatusCode  int
	RawResponse string
	Err         error
}

func (e *LLMCallError) Error() string {
	msg := "llm call failed"
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LLMCallError) Unwrap() error { return e.Err }

// IsDataFormat reports whether err is a DataFormatError.
func IsDataFormat(err error) bool {
	var dfe *DataFormatError
	return errors.As(err, &dfe)
}

// IsLLMCall reports whether err is an LLMCallError.
func IsLLMCall(err error) bool {
	var le *LLMCallError
	return errors.As(err, &le)
}

// APIError is the JSON error body returned by the API.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// New creates an APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// FromError maps any error to an APIError.
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var dfe *DataFormatError
	if errors.As(err, &dfe) {
		return New(http.StatusUnprocessableEntity, "DATA_FORMAT_ERROR", dfe.Error())
	}

	var llmErr *LLMCallError
	if errors.As(err, &llmErr) {
		apiErr := New(http.StatusBadGateway, "LLM_CALL_ERROR", llmErr.Error())
		if llmErr.RawResponse != "" {
			apiErr.Details = map[string]string{"raw_response": llmErr.RawResponse}
		}
		return apiErr
	}

	switch {
	case errors.Is(err, ErrNoMatchingData):
		return New(http.StatusUnprocessableEntity, "NO_MATCHING_DATA", err.Error())
	case errors.Is(err, ErrSummaryInProgress):
		return New(http.StatusConflict, "SUMMARY_IN_PROGRESS", err.Error())
	case errors.Is(err, ErrDatasetNotFound):
		return New(http.StatusNotFound, "DATASET_NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidSelection):
		return New(http.StatusBadRequest, "INVALID_SELECTION", err.Error())
	}
	return New(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
