package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mixelka/emailtriage/internal/draft"
	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/internal/triage"
	"github.com/mixelka/emailtriage/pkg/models"
)

// DraftsFilter is the filter query value that lists drafts
const DraftsFilter = "drafts"

type EmailsGroup struct {
	routerGroup *echo.Group
	triage      *triage.Service
}

// EmailList is the payload of the list endpoint
type EmailList struct {
	Emails []models.Message `json:"emails"`
	Total  int              `json:"total"`
}

type ReplyRequest struct {
	Content string `json:"content"`
}

type BulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

type DraftRequest struct {
	EmailID string `json:"emailId"`
	Context string `json:"context"`
	Intent  string `json:"intent,omitempty"` // Quick-reply intent, takes precedence over Context
}

type SummarizeRequest struct {
	EmailID string `json:"emailId"`
}

func NewEmailsGroup(g *echo.Group, svc *triage.Service) *EmailsGroup {
	group := &EmailsGroup{routerGroup: g, triage: svc}

	g.GET("", group.ListEmails)
	g.POST("/bulk", group.Bulk)
	g.POST("/draft", group.GenerateDraft)
	g.POST("/summarize", group.Summarize)
	g.GET("/:id", group.GetEmail)
	g.POST("/:id/view", group.ViewEmail)
	g.POST("/:id/read", group.MarkRead)
	g.POST("/:id/archive", group.Archive)
	g.POST("/:id/reply", group.Reply)

	return group
}

// filterFromQuery reads filter, search and date. An absent filter selects
// messages awaiting a reply.
func filterFromQuery(c echo.Context) (triage.Filter, error) {
	var f triage.Filter

	name := strings.TrimSpace(c.QueryParam("filter"))
	switch {
	case name == "":
		f.View = triage.ViewNeedsReply
	case strings.EqualFold(name, DraftsFilter):
		f.Drafts = true
	default:
		view, err := triage.ParseView(name)
		if err != nil {
			return f, err
		}
		f.View = view
	}

	window, err := triage.ParseWindow(c.QueryParam("date"))
	if err != nil {
		return f, err
	}
	f.Window = window
	f.Search = c.QueryParam("search")

	return f, nil
}

func (g *EmailsGroup) ListEmails(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return FailureResponse(c, err)
	}

	msgs, err := g.triage.List(c.Request().Context(), filter)
	if err != nil {
		return FailureResponse(c, err)
	}

	return SuccessResponse(c, EmailList{Emails: msgs, Total: len(msgs)})
}

func (g *EmailsGroup) GetEmail(c echo.Context) error {
	msg, err := g.triage.Get(c.Request().Context(), pathID(c))
	if err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, msg)
}

// ViewEmail returns a message and marks it read
func (g *EmailsGroup) ViewEmail(c echo.Context) error {
	msg, err := g.triage.View(c.Request().Context(), pathID(c))
	if err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, msg)
}

func (g *EmailsGroup) MarkRead(c echo.Context) error {
	if err := g.triage.MarkRead(c.Request().Context(), pathID(c)); err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, nil)
}

func (g *EmailsGroup) Archive(c echo.Context) error {
	if err := g.triage.Archive(c.Request().Context(), pathID(c)); err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, nil)
}

func (g *EmailsGroup) Reply(c echo.Context) error {
	var req ReplyRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	if err := g.triage.MarkReplied(c.Request().Context(), pathID(c), req.Content); err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, nil)
}

func (g *EmailsGroup) Bulk(c echo.Context) error {
	var req BulkRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	op, err := store.ParseBatchOp(req.Action)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, err.Error())
	}

	if err := g.triage.Bulk(c.Request().Context(), op, req.IDs); err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, map[string]int{"count": len(req.IDs)})
}

// GenerateDraft answers 200 for any known or unknown message; a missing
// message is reported in the result rather than as an error. Only an
// unknown intent is rejected.
func (g *EmailsGroup) GenerateDraft(c echo.Context) error {
	var req DraftRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	if req.Intent != "" {
		intent, ok := draft.ParseIntent(req.Intent)
		if !ok {
			return ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf("unknown reply intent %q", req.Intent))
		}
		return SuccessResponse(c, g.triage.GenerateIntentDraft(c.Request().Context(), req.EmailID, intent))
	}

	return SuccessResponse(c, g.triage.GenerateDraft(c.Request().Context(), req.EmailID, req.Context))
}

func (g *EmailsGroup) Summarize(c echo.Context) error {
	var req SummarizeRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	return SuccessResponse(c, g.triage.SummarizeThread(c.Request().Context(), req.EmailID))
}
