package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mixelka/emailtriage/internal/store"
)

// healthProbeID is looked up to check that the store answers
const healthProbeID = "__health__"

type HealthGroup struct {
	store       store.Store
	routerGroup *echo.Group
}

func NewHealthGroup(g *echo.Group, st store.Store) *HealthGroup {
	group := &HealthGroup{routerGroup: g, store: st}

	g.GET("", group.HealthCheck)

	return group
}

func (h *HealthGroup) HealthCheck(c echo.Context) error {
	_, err := h.store.Get(c.Request().Context(), healthProbeID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ok",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
