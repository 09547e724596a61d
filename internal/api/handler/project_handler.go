package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flowsuit/flowsuit-api/internal/api/metrics"
	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// ProjectHandler handles HTTP requests for project and milestone updates.
type ProjectHandler struct {
	projects   ports.ProjectService
	milestones ports.MilestoneService
}

func NewProjectHandler(projects ports.ProjectService, milestones ports.MilestoneService) *ProjectHandler {
	return &ProjectHandler{projects: projects, milestones: milestones}
}

type updateProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed on_hold cancelled"`
}

// UpdateStatus handles PATCH /v1/projects/:id/status.
//
// @Summary      Transition a project's status
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                      true  "Project ID"
// @Param        body  body      updateProjectStatusRequest  true  "Target status"
// @Success      200   {object}  domain.Project
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/projects/{id}/status [patch]
func (h *ProjectHandler) UpdateStatus(c echo.Context) error {
	userID, err := ctxOwner(c)
	if err != nil {
		return err
	}

	var req updateProjectStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	project, err := h.projects.UpdateStatus(c.Request().Context(), c.Param("id"), userID, domain.ProjectStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, project)
}

// MarkMilestonePaid handles PATCH /v1/milestones/:id/paid.
//
// @Summary      Mark a payment milestone as paid
// @Tags         milestones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Milestone ID"
// @Success      200  {object}  domain.PaymentMilestone
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/milestones/{id}/paid [patch]
func (h *ProjectHandler) MarkMilestonePaid(c echo.Context) error {
	userID, err := ctxOwner(c)
	if err != nil {
		return err
	}

	milestone, err := h.milestones.MarkPaid(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}

	metrics.MilestonesPaidTotal.Inc()
	return c.JSON(http.StatusOK, milestone)
}
