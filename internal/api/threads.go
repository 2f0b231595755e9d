package api

import (
	"github.com/labstack/echo/v4"

	"github.com/mixelka/emailtriage/internal/triage"
	"github.com/mixelka/emailtriage/pkg/models"
)

type ThreadsGroup struct {
	routerGroup *echo.Group
	triage      *triage.Service
}

type ThreadList struct {
	Threads []models.ThreadSummary `json:"threads"`
	Total   int                    `json:"total"`
}

func NewThreadsGroup(g *echo.Group, svc *triage.Service) *ThreadsGroup {
	group := &ThreadsGroup{routerGroup: g, triage: svc}

	g.GET("", group.ListThreads)
	g.GET("/:id/messages", group.ThreadMessages)

	return group
}

func (g *ThreadsGroup) ListThreads(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return FailureResponse(c, err)
	}

	threads, err := g.triage.ListThreads(c.Request().Context(), filter)
	if err != nil {
		return FailureResponse(c, err)
	}

	return SuccessResponse(c, ThreadList{Threads: threads, Total: len(threads)})
}

func (g *ThreadsGroup) ThreadMessages(c echo.Context) error {
	msgs, err := g.triage.ThreadMessages(c.Request().Context(), pathID(c))
	if err != nil {
		return FailureResponse(c, err)
	}

	return SuccessResponse(c, EmailList{Emails: msgs, Total: len(msgs)})
}
