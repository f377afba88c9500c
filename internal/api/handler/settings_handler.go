package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type SettingsHandler struct {
	service ports.SettingsService
}

func NewSettingsHandler(service ports.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// @Summary      Get settings
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Settings
// @Router       /api/settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	s, err := h.service.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// Update replaces the sections present in the body.
//
// @Summary      Update settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.SettingsUpdate  true  "Sections to replace"
// @Success      200   {object}  domain.Settings
// @Failure      422   {object}  map[string]string
// @Router       /api/settings [put]
func (h *SettingsHandler) Update(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	var upd domain.SettingsUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s, err := h.service.Update(c.Request().Context(), upd, actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// @Summary      Reload settings from the store
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Settings
// @Router       /api/settings/reload [post]
func (h *SettingsHandler) Reload(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.service.Reload(ctx); err != nil {
		return err
	}
	return h.Get(c)
}

// Defaults returns the form defaults for new projects or tasks.
//
// @Summary      Form defaults
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string  true  "project or task"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /api/settings/defaults/{kind} [get]
func (h *SettingsHandler) Defaults(c echo.Context) error {
	s, err := h.service.Get(c.Request().Context())
	if err != nil {
		return err
	}
	switch c.Param("kind") {
	case "project":
		return c.JSON(http.StatusOK, s.ProjectDefaults)
	case "task":
		return c.JSON(http.StatusOK, s.TaskDefaults)
	}
	return echo.NewHTTPError(http.StatusNotFound, "unknown defaults kind")
}
