// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lexanalytica/backend/internal/pipeline"
	"go.uber.org/zap"
)

// APIError represents a structured API error response. Detail carries the
// human readable message the web client displays.
type APIError struct {
	Status int    `json:"-" msgpack:"-"`
	Code   string `json:"code" msgpack:"code"`
	Detail string `json:"detail" msgpack:"detail"`
	Cause  string `json:"cause,omitempty" msgpack:"cause,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status: http.StatusBadRequest,
		Code:   "BAD_REQUEST",
		Detail: message,
	}
	if cause != nil {
		err.Cause = cause.Error()
	}
	return err
}

// NewNoFilesError creates the 400 returned for a form without documents
func NewNoFilesError() *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Code:   "NO_FILES",
		Detail: "No files uploaded",
	}
}

// NewExtractionError creates a 400 naming the document that could not be read
func NewExtractionError(filename string, cause error) *APIError {
	return &APIError{
		Status: http.StatusBadRequest,
		Code:   "EXTRACTION_ERROR",
		Detail: fmt.Sprintf("Error processing file %s: %v", filename, cause),
	}
}

// NewPayloadTooLargeError creates a 413 error
func NewPayloadTooLargeError(reason string) *APIError {
	return &APIError{
		Status: http.StatusRequestEntityTooLarge,
		Code:   "PAYLOAD_TOO_LARGE",
		Detail: "Payload too large: " + reason,
	}
}

// NewModelError creates the 500 returned when the generative model fails
func NewModelError(cause error) *APIError {
	return &APIError{
		Status: http.StatusInternalServerError,
		Code:   "MODEL_ERROR",
		Detail: fmt.Sprintf("AI model error: %v", cause),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status: http.StatusInternalServerError,
		Code:   "INTERNAL_ERROR",
		Detail: message,
	}
	if cause != nil {
		err.Cause = cause.Error()
	}
	return err
}

// toAPIError maps any handler error onto the wire shape.
func toAPIError(err error, development bool) *APIError {
	var (
		apiErr     *APIError
		extractErr *pipeline.ExtractionError
		modelErr   *pipeline.ModelError
		tooLarge   *pipeline.PayloadTooLargeError
		httpErr    *echo.HTTPError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, pipeline.ErrNoFiles):
		return NewNoFilesError()
	case errors.As(err, &extractErr):
		return NewExtractionError(extractErr.Filename, extractErr.Err)
	case errors.As(err, &tooLarge):
		return NewPayloadTooLargeError(tooLarge.Reason)
	case errors.As(err, &modelErr):
		return NewModelError(modelErr.Err)
	case errors.As(err, &httpErr):
		return fromHTTPError(httpErr)
	}

	apiErr = &APIError{
		Status: http.StatusInternalServerError,
		Code:   "UNKNOWN_ERROR",
		Detail: "An unexpected error occurred",
	}
	if development {
		apiErr.Cause = err.Error()
	}
	return apiErr
}

func fromHTTPError(e *echo.HTTPError) *APIError {
	switch e.Code {
	case http.StatusRequestEntityTooLarge:
		return NewPayloadTooLargeError("request body exceeds the configured limit")
	case http.StatusNotFound:
		return &APIError{Status: e.Code, Code: "NOT_FOUND", Detail: "Not Found"}
	case http.StatusTooManyRequests:
		return &APIError{Status: e.Code, Code: "RATE_LIMITED", Detail: fmt.Sprintf("%v", e.Message)}
	}
	return &APIError{
		Status: e.Code,
		Code:   "HTTP_ERROR",
		Detail: fmt.Sprintf("%v", e.Message),
	}
}

// NewErrorHandler returns the echo HTTPErrorHandler that translates every
// error into an APIError body. Causes of unexpected errors are only exposed
// in development.
// Usage: e.HTTPErrorHandler = api.NewErrorHandler(cfg.IsDevelopment(), logger)
func NewErrorHandler(development bool, logger *zap.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := toAPIError(err, development)
		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("code", apiErr.Code),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(apiErr.Status)
			return
		}
		if err := RespondWithError(c, apiErr); err != nil {
			logger.Warn("writing error response", zap.Error(err))
		}
	}
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return respond(c, err.Status, err)
}
