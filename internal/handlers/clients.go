package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/clients"
	"github.com/acoustichub/crm/internal/kanban"
)

// ClientsHandler serves client CRUD, pipeline transitions and merges.
type ClientsHandler struct {
	clients  *clients.Service
	pipeline *kanban.Service
	logger   *slog.Logger
}

type mergeRequest struct {
	PrimaryClientID   string `json:"primaryClientId" validate:"required,uuid"`
	SecondaryClientID string `json:"secondaryClientId" validate:"required,uuid"`
}

func NewClientsHandler(log *slog.Logger, clientService *clients.Service, pipeline *kanban.Service) *ClientsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ClientsHandler{
		clients:  clientService,
		pipeline: pipeline,
		logger:   log.With(slog.String("handler", "clients")),
	}
}

func (h *ClientsHandler) Register(e *echo.Echo) {
	g := e.Group(APIPrefix + "/clients")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/merge", h.Merge)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PUT("/:id/status", h.UpdateStatus)
	g.GET("/:id/status-history", h.StatusHistory)
}

// List godoc
// @Summary List clients
// @Tags clients
// @Param search query string false "Matches name, phone or email"
// @Param status query string false "Pipeline stage slug"
// @Param branchId query string false "Branch ID"
// @Param source query string false "Acquisition platform"
// @Success 200 {array} clients.Client
// @Router /clients [get]
func (h *ClientsHandler) List(c echo.Context) error {
	items, err := h.clients.List(c.Request().Context(), clients.ListFilter{
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
		BranchID: c.QueryParam("branchId"),
		Source:   c.QueryParam("source"),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ClientsHandler) Get(c echo.Context) error {
	client, err := h.clients.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, client)
}

func (h *ClientsHandler) Create(c echo.Context) error {
	var req clients.CreateInput
	if err := bind(c, &req); err != nil {
		return err
	}
	client, err := h.clients.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, client)
}

func (h *ClientsHandler) Update(c echo.Context) error {
	var req clients.UpdateInput
	if err := bind(c, &req); err != nil {
		return err
	}
	client, err := h.clients.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, client)
}

// UpdateStatus godoc
// @Summary Move a client to another pipeline stage
// @Tags clients
// @Param id path string true "Client ID"
// @Param payload body kanban.TransitionInput true "Target stage"
// @Success 200 {object} clients.Client
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{id}/status [put]
func (h *ClientsHandler) UpdateStatus(c echo.Context) error {
	changedBy, err := staffID(c)
	if err != nil {
		return err
	}
	var req kanban.TransitionInput
	if err := bind(c, &req); err != nil {
		return err
	}
	client, err := h.pipeline.Transition(c.Request().Context(), c.Param("id"), req.Status, changedBy, req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, client)
}

func (h *ClientsHandler) StatusHistory(c echo.Context) error {
	items, err := h.pipeline.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// Merge godoc
// @Summary Merge a duplicate client into another
// @Tags clients
// @Param payload body mergeRequest true "Clients to merge"
// @Success 200 {object} clients.Client
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/merge [post]
func (h *ClientsHandler) Merge(c echo.Context) error {
	var req mergeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	client, err := h.clients.Merge(c.Request().Context(), req.PrimaryClientID, req.SecondaryClientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, client)
}
