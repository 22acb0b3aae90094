package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/integrations"
	"github.com/acoustichub/crm/internal/schedule"
)

// IntegrationsHandler manages platform credentials and the manual YouTube sync.
type IntegrationsHandler struct {
	service *integrations.Service
	youtube *schedule.YouTubeSync
	logger  *slog.Logger
}

type toggleRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func NewIntegrationsHandler(log *slog.Logger, service *integrations.Service, youtube *schedule.YouTubeSync) *IntegrationsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &IntegrationsHandler{
		service: service,
		youtube: youtube,
		logger:  log.With(slog.String("handler", "integrations")),
	}
}

func (h *IntegrationsHandler) Register(e *echo.Echo) {
	g := e.Group(APIPrefix + "/integrations")
	g.GET("", h.List)
	g.POST("/configure", h.Configure)
	g.POST("/youtube/sync", h.SyncYouTube)
	g.PUT("/:id/toggle", h.Toggle)
	g.DELETE("/:id", h.Delete)
}

func (h *IntegrationsHandler) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// Configure godoc
// @Summary Save platform credentials
// @Description Stores the integration, then registers webhooks where the platform needs them.
// @Description A failed registration is reported in setupError and does not remove the row.
// @Tags integrations
// @Param payload body integrations.ConfigureInput true "Credentials"
// @Success 201 {object} integrations.Integration
// @Failure 400 {object} ErrorResponse
// @Router /integrations/configure [post]
func (h *IntegrationsHandler) Configure(c echo.Context) error {
	createdBy, err := staffID(c)
	if err != nil {
		return err
	}
	var req integrations.ConfigureInput
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := h.service.Configure(c.Request().Context(), req, createdBy)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *IntegrationsHandler) Toggle(c echo.Context) error {
	var req toggleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "isActive is required")
	}
	item, err := h.service.Toggle(c.Request().Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *IntegrationsHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SyncYouTube runs one comment sync now and reports the counts.
func (h *IntegrationsHandler) SyncYouTube(c echo.Context) error {
	if h.youtube == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "youtube sync not available")
	}
	summary, err := h.youtube.Sync(c.Request().Context())
	if err != nil {
		h.logger.Warn("manual youtube sync failed", slog.Any("error", err))
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
