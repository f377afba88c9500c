package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/core/ports"
)

type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// @Summary      Progress report
// @Description  Admins see every project and per-user totals; managers see their own projects only.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query  string  false  "Created on or after (YYYY-MM-DD or RFC 3339)"
// @Param        end_date    query  string  false  "Created on or before (YYYY-MM-DD or RFC 3339)"
// @Param        manager_id  query  string  false  "Limit to one manager's projects (admin only)"
// @Success      200         {object}  ports.Report
// @Failure      403         {object}  map[string]string
// @Failure      422         {object}  map[string]string
// @Router       /api/reports [get]
func (h *ReportHandler) Get(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	report, err := h.service.Generate(c.Request().Context(), actor, ports.ReportQuery{
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
		ManagerID: c.QueryParam("manager_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
