package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flowsuit/flowsuit-api/internal/api/metrics"
	"github.com/flowsuit/flowsuit-api/internal/core/ports"
)

// ClientHandler handles HTTP requests for client records.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

type createClientRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// Create handles POST /v1/clients.
//
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClientRequest  true  "Client details"
// @Success      201   {object}  domain.Client
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	userID, err := ctxOwner(c)
	if err != nil {
		return err
	}

	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.CreateClient(c.Request().Context(), ports.CreateClientInput{
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}

	metrics.ClientsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, client)
}

// List handles GET /v1/clients.
//
// @Summary      List the acting user's clients
// @Tags         clients
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Client
// @Failure      401  {object}  map[string]string
// @Router       /v1/clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	userID, err := ctxOwner(c)
	if err != nil {
		return err
	}

	clients, err := h.service.ListClients(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, clients)
}
