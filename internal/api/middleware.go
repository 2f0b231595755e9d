package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIKeyHeader carries the shared key for /store routes
const APIKeyHeader = "X-API-Key"

// NewAPIKeyMiddleware rejects requests without the configured key. An empty
// key disables the check.
func NewAPIKeyMiddleware(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}

			got := c.Request().Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return ErrorResponse(c, http.StatusUnauthorized, "invalid api key")
			}
			return next(c)
		}
	}
}
