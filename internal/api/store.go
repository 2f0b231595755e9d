package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/pkg/models"
)

// StoreGroup exposes a store.Store so that store.RemoteStore can use it
// as a backend. Errors map to 404, 409 and 503 as RemoteStore expects.
type StoreGroup struct {
	routerGroup *echo.Group
	store       store.Store
}

func NewStoreGroup(g *echo.Group, st store.Store) *StoreGroup {
	group := &StoreGroup{routerGroup: g, store: st}

	g.GET("", group.List)
	g.POST("", group.Insert)
	g.POST("/batch", group.Batch)
	g.GET("/:id", group.Get)
	g.PUT("/:id", group.Update)
	g.DELETE("/:id", group.Delete)

	return group
}

func (g *StoreGroup) List(c echo.Context) error {
	msgs, err := g.store.List(c.Request().Context())
	if err != nil {
		return FailureResponse(c, err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return SuccessResponse(c, msgs)
}

func (g *StoreGroup) Get(c echo.Context) error {
	msg, err := g.store.Get(c.Request().Context(), pathID(c))
	if err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, msg)
}

func (g *StoreGroup) Insert(c echo.Context) error {
	var msg models.Message
	if err := c.Bind(&msg); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if msg.ID == "" {
		return ErrorResponse(c, http.StatusBadRequest, "id is required")
	}

	if err := g.store.Insert(c.Request().Context(), &msg); err != nil {
		return FailureResponse(c, err)
	}
	return c.JSON(http.StatusCreated, Response{Success: true, Data: msg})
}

func (g *StoreGroup) Update(c echo.Context) error {
	var msg models.Message
	if err := c.Bind(&msg); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	msg.ID = pathID(c)

	if err := g.store.Update(c.Request().Context(), msg); err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, nil)
}

func (g *StoreGroup) Delete(c echo.Context) error {
	if err := g.store.Delete(c.Request().Context(), pathID(c)); err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, nil)
}

func (g *StoreGroup) Batch(c echo.Context) error {
	var req store.BatchRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	op, err := store.ParseBatchOp(string(req.Op))
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, err.Error())
	}

	if err := g.store.ApplyBatch(c.Request().Context(), op, req.IDs); err != nil {
		return FailureResponse(c, err)
	}
	return SuccessResponse(c, nil)
}
