package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// DashboardHandler serves the aggregated dashboard numbers.
type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

type dashboardResponse struct {
	Clients       int64   `json:"clients"`
	Proposals     int64   `json:"proposals"`
	Projects      int64   `json:"projects"`
	PipelineTotal float64 `json:"pipeline_total"`
}

// Summary handles GET /v1/dashboard.
//
// @Summary      Headline counts and open pipeline value for the acting user
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Summary(c echo.Context) error {
	userID, err := ctxOwner(c)
	if err != nil {
		return err
	}

	summary, err := h.service.Summary(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		Clients:       summary.Clients,
		Proposals:     summary.Proposals,
		Projects:      summary.Projects,
		PipelineTotal: summary.PipelineTotal,
	})
}
