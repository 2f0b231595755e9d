package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/internal/triage"
)

// ServerDeps dependencies for creating the HTTP server
type ServerDeps struct {
	Triage      *triage.Service
	Store       store.Store
	StoreAPIKey string // Required on /store routes when set
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewServer builds the echo instance with every route group registered
func NewServer(deps ServerDeps) *echo.Echo {
	logger := deps.Logger.With("component", "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Error("request failed", "method", v.Method, "uri", v.URI, "status", v.Status, "error", v.Error)
				return nil
			}
			logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
	}))

	e.Use(middleware.Recover())

	NewHealthGroup(e.Group("/health"), deps.Store)

	base := e.Group(HttpServerBaseRoute)
	NewEmailsGroup(base.Group("/emails"), deps.Triage)
	NewDraftsGroup(base.Group("/drafts"), deps.Triage)
	NewThreadsGroup(base.Group("/threads"), deps.Triage)
	NewAnalyticsGroup(base.Group("/analytics"), deps.Triage)

	storeGroup := e.Group(HttpServerStoreRoute, NewAPIKeyMiddleware(deps.StoreAPIKey))
	NewStoreGroup(storeGroup.Group("/messages"), deps.Store)

	return e
}
