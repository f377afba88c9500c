package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/core/ports"
)

// NotificationHandler serves the caller's own notifications. Another
// account's notification is reported as not found.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page    query  int   false  "Page (1-based)"
// @Param        limit   query  int   false  "Page size"
// @Param        unread  query  bool  false  "Only unread"
// @Success      200     {object}  ports.NotificationPage
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.Request().Context(), actor, ports.NotificationQuery{
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 20),
		UnreadOnly: c.QueryParam("unread") == "true",
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	n, err := h.service.UnreadCount(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  domain.Notification
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkRead(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkAllRead(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": n})
}

// @Summary      Delete a notification
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SendTestEmail sends a system notification to the calling admin.
//
// @Summary      Send a test email
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.Notification
// @Router       /api/notifications/test-email [post]
func (h *NotificationHandler) SendTestEmail(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	n, err := h.service.SendTestEmail(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}
