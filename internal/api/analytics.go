package api

import (
	"github.com/labstack/echo/v4"

	"github.com/mixelka/emailtriage/internal/triage"
)

type AnalyticsGroup struct {
	routerGroup *echo.Group
	triage      *triage.Service
}

func NewAnalyticsGroup(g *echo.Group, svc *triage.Service) *AnalyticsGroup {
	group := &AnalyticsGroup{routerGroup: g, triage: svc}

	g.GET("", group.Stats)

	return group
}

func (g *AnalyticsGroup) Stats(c echo.Context) error {
	stats, err := g.triage.Stats(c.Request().Context())
	if err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, stats)
}
