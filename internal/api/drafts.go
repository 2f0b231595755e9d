package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mixelka/emailtriage/internal/triage"
)

type DraftsGroup struct {
	routerGroup *echo.Group
	triage      *triage.Service
}

func NewDraftsGroup(g *echo.Group, svc *triage.Service) *DraftsGroup {
	group := &DraftsGroup{routerGroup: g, triage: svc}

	g.POST("", group.SaveDraft)

	return group
}

func (g *DraftsGroup) SaveDraft(c echo.Context) error {
	var in triage.DraftInput
	if err := c.Bind(&in); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	msg, err := g.triage.SaveDraft(c.Request().Context(), in)
	if err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, msg)
}
