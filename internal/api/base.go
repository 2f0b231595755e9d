// Package api serves the triage operations and the raw message store over
// HTTP with echo.
package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/internal/triage"
)

const (
	HttpServerBaseRoute  string = "/api"
	HttpServerStoreRoute string = "/store"
)

// Response is a standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse returns a successful response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// ErrorResponse returns an error response
func ErrorResponse(c echo.Context, code int, message string) error {
	return c.JSON(code, Response{
		Success: false,
		Error:   message,
	})
}

// FailureResponse maps a domain error onto a status code
func FailureResponse(c echo.Context, err error) error {
	code := StatusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		c.Logger().Error(err)
		message = "internal error"
	}
	return ErrorResponse(c, code, message)
}

// StatusFor returns the HTTP status for a domain error
func StatusFor(err error) int {
	switch {
	case errors.Is(err, triage.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, triage.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, triage.ErrStoreUnavailable), errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// pathID returns the unescaped :id path parameter
func pathID(c echo.Context) string {
	raw := c.Param("id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
