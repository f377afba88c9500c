package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/scheduler"
)

// SchedulerControl is the slice of the trigger registry exposed over HTTP.
type SchedulerControl interface {
	Status() []scheduler.Status
	Fire(ctx context.Context, name string) (*scheduler.Run, error)
}

type SchedulerHandler struct {
	scheduler SchedulerControl
}

func NewSchedulerHandler(s SchedulerControl) *SchedulerHandler {
	return &SchedulerHandler{scheduler: s}
}

// @Summary      Scheduler status
// @Tags         scheduler
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  scheduler.Status
// @Router       /api/scheduler [get]
func (h *SchedulerHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.Status())
}

// Run fires a trigger now. A trigger that is already running is not
// started twice.
//
// @Summary      Run a trigger
// @Tags         scheduler
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Trigger name"
// @Success      200   {object}  scheduler.Run
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/scheduler/{name}/run [post]
func (h *SchedulerHandler) Run(c echo.Context) error {
	run, err := h.scheduler.Fire(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}
