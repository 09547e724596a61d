package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flowsuit/flowsuit-api/internal/api/metrics"
	"github.com/flowsuit/flowsuit-api/internal/core/domain"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// ProposalHandler handles HTTP requests for proposal operations, including
// the public magic link surface.
type ProposalHandler struct {
	service ports.ProposalService
}

func NewProposalHandler(service ports.ProposalService) *ProposalHandler {
	return &ProposalHandler{service: service}
}

// Create handles POST /v1/proposals.
//
// @Summary      Create a proposal with its project and milestone schedule
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProposalRequest  true  "Proposal details"
// @Success      201   {object}  createProposalResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/proposals [post]
func (h *ProposalHandler) Create(c echo.Context) error {
	userID, err := ctxOwner(c)
	if err != nil {
		return err
	}

	var req createProposalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.CreateProposal(c.Request().Context(), toCreateProposalInput(req, userID))
	if err != nil {
		var ce *domain.CreationError
		if errors.As(err, &ce) {
			metrics.ProposalCreationFailuresTotal.WithLabelValues(ce.Stage).Inc()
		}
		return err
	}

	metrics.ProposalsCreatedTotal.WithLabelValues(req.PaymentTerm).Inc()
	return c.JSON(http.StatusCreated, toCreateProposalResponse(result))
}

// Get handles GET /v1/proposals/:id.
//
// @Summary      Get a proposal with its milestones and share link
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  getProposalResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/proposals/{id} [get]
func (h *ProposalHandler) Get(c echo.Context) error {
	userID, err := ctxOwner(c)
	if err != nil {
		return err
	}

	detail, err := h.service.GetProposal(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toGetProposalResponse(detail))
}

// List handles GET /v1/proposals.
//
// @Summary      List proposals with filters and pagination
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        client_id  query     string  false  "Filter by client"
// @Param        status     query     string  false  "Filter by status"  Enums(draft, sent, accepted, rejected)
// @Param        search     query     string  false  "Search in title"
// @Param        date_from  query     string  false  "Created on or after (YYYY-MM-DD)"
// @Param        date_to    query     string  false  "Created on or before (YYYY-MM-DD)"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Page size (default 20, max 100)"
// @Success      200        {object}  listProposalsResponse
// @Failure      401        {object}  map[string]string
// @Router       /v1/proposals [get]
func (h *ProposalHandler) List(c echo.Context) error {
	userID, err := ctxOwner(c)
	if err != nil {
		return err
	}

	input := ports.ListProposalsInput{
		UserID:   userID,
		ClientID: c.QueryParam("client_id"),
		Status:   c.QueryParam("status"),
		Search:   c.QueryParam("search"),
	}
	if v := c.QueryParam("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_from must be a date in 2006-01-02 format")
		}
		input.DateFrom = t
	}
	if v := c.QueryParam("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_to must be a date in 2006-01-02 format")
		}
		input.DateTo = t
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListProposals(c.Request().Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListProposalsResponse(result))
}

// Send handles POST /v1/proposals/:id/send.
//
// @Summary      Mark a draft proposal as sent
// @Tags         proposals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  proposalSummaryResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/proposals/{id}/send [post]
func (h *ProposalHandler) Send(c echo.Context) error {
	userID, err := ctxOwner(c)
	if err != nil {
		return err
	}

	proposal, err := h.service.SendProposal(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toProposalSummary(proposal))
}
