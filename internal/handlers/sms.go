package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/sms"
)

// SMSHandler sends branch information texts and lists the send log.
type SMSHandler struct {
	sms    *sms.Service
	logger *slog.Logger
}

func NewSMSHandler(log *slog.Logger, service *sms.Service) *SMSHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SMSHandler{sms: service, logger: log.With(slog.String("handler", "sms"))}
}

func (h *SMSHandler) Register(e *echo.Echo) {
	g := e.Group(APIPrefix + "/sms")
	g.POST("/send", h.Send)
	g.GET("/history", h.History)
}

// Send godoc
// @Summary Text a client the branch details
// @Tags sms
// @Param payload body sms.SendInput true "Recipient and branch"
// @Success 200 {object} sms.SendResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /sms/send [post]
func (h *SMSHandler) Send(c echo.Context) error {
	sentBy, err := staffID(c)
	if err != nil {
		return err
	}
	var req sms.SendInput
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.sms.Send(c.Request().Context(), req, sentBy)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SMSHandler) History(c echo.Context) error {
	items, err := h.sms.History(c.Request().Context(), sms.HistoryFilter{
		ClientID: c.QueryParam("clientId"),
		BranchID: c.QueryParam("branchId"),
		Limit:    queryLimit(c),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}
