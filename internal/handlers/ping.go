package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/healthcheck"
)

type PingHandler struct {
	health *healthcheck.Aggregator
	logger *slog.Logger
}

func NewPingHandler(log *slog.Logger, health *healthcheck.Aggregator) *PingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PingHandler{health: health, logger: log.With(slog.String("handler", "ping"))}
}

func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
	e.HEAD("/health", h.PingHead)
	e.GET("/health/checks", h.Checks)
}

func (h *PingHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *PingHandler) PingHead(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Checks godoc
// @Summary Dependency and integration checks
// @Tags health
// @Success 200 {object} healthcheck.Report
// @Failure 503 {object} healthcheck.Report
// @Router /health/checks [get]
func (h *PingHandler) Checks(c echo.Context) error {
	report := h.health.Run(c.Request().Context())
	if report.Status == healthcheck.StatusError {
		h.logger.Warn("health checks failing")
		return c.JSON(http.StatusServiceUnavailable, report)
	}
	return c.JSON(http.StatusOK, report)
}
