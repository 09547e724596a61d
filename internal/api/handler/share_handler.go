package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flowsuit/flowsuit-api/internal/api/metrics"
	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// ShareHandler serves the public magic link surface. Its routes are mounted
// outside the authenticated group: the token IS the credential.
type ShareHandler struct {
	service ports.ProposalService
}

func NewShareHandler(service ports.ProposalService) *ShareHandler {
	return &ShareHandler{service: service}
}

// View handles GET /p/:token.
//
// @Summary      View a shared proposal by its magic link token
// @Tags         share
// @Produce      json
// @Param        token  path      string  true  "Magic link token"
// @Success      200    {object}  shareViewResponse
// @Failure      404    {object}  map[string]string
// @Router       /p/{token} [get]
func (h *ShareHandler) View(c echo.Context) error {
	view, err := h.service.ResolveToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, domain.ErrProposalNotFound) {
			metrics.ShareViewsTotal.WithLabelValues("miss").Inc()
		}
		return err
	}

	metrics.ShareViewsTotal.WithLabelValues("hit").Inc()
	return c.JSON(http.StatusOK, toShareViewResponse(view))
}

// Accept handles POST /p/:token/accept.
//
// @Summary      Accept a sent proposal on behalf of the client holding the link
// @Tags         share
// @Produce      json
// @Param        token  path      string  true  "Magic link token"
// @Success      200    {object}  shareViewResponse
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Router       /p/{token}/accept [post]
func (h *ShareHandler) Accept(c echo.Context) error {
	view, err := h.service.AcceptByToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toShareViewResponse(view))
}
