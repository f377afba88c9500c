package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type ActivityHandler struct {
	service ports.ActivityService
}

func NewActivityHandler(service ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// @Summary      List activity
// @Tags         activities
// @Produce      json
// @Security     BearerAuth
// @Param        page         query  int     false  "Page (1-based)"
// @Param        limit        query  int     false  "Page size"
// @Param        action       query  string  false  "Action filter"
// @Param        target_type  query  string  false  "Target type filter"
// @Success      200          {object}  ports.ActivityPage
// @Router       /api/activities [get]
func (h *ActivityHandler) List(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.Request().Context(), actor, ports.ActivityQuery{
		Action:     domain.Action(c.QueryParam("action")),
		TargetType: domain.TargetType(c.QueryParam("target_type")),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 20),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// @Summary      Activity statistics
// @Tags         activities
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ActivityStats
// @Failure      403  {object}  map[string]string
// @Router       /api/activities/stats [get]
func (h *ActivityHandler) Stats(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
