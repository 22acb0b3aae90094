package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	messagepkg "github.com/acoustichub/crm/internal/message"
	"github.com/acoustichub/crm/internal/outbound"
)

// MessageHandler serves the unified inbox and staff replies.
type MessageHandler struct {
	messages   *messagepkg.DBService
	dispatcher *outbound.Dispatcher
	logger     *slog.Logger
}

type sendMessageRequest struct {
	ConversationID string `json:"conversationId" validate:"required,uuid"`
	Content        string `json:"content" validate:"required,max=4096"`
}

func NewMessageHandler(log *slog.Logger, messages *messagepkg.DBService, dispatcher *outbound.Dispatcher) *MessageHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MessageHandler{
		messages:   messages,
		dispatcher: dispatcher,
		logger:     log.With(slog.String("handler", "messages")),
	}
}

// Register registers all conversation routes.
func (h *MessageHandler) Register(e *echo.Echo) {
	g := e.Group(APIPrefix + "/messages")
	g.GET("/conversations", h.ListConversations)
	g.GET("/conversations/:id/messages", h.ListMessages)
	g.GET("/conversations/:id/dispatches", h.ListDispatches)
	g.PUT("/conversations/:id/read", h.MarkRead)
	g.POST("/send", h.Send)
}

func (h *MessageHandler) ListConversations(c echo.Context) error {
	items, err := h.messages.ListConversations(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MessageHandler) ListMessages(c echo.Context) error {
	items, err := h.messages.ListMessages(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MessageHandler) MarkRead(c echo.Context) error {
	if err := h.messages.MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Send godoc
// @Summary Reply to a conversation on its platform
// @Tags messages
// @Param payload body sendMessageRequest true "Reply"
// @Success 201 {object} message.Message
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /messages/send [post]
func (h *MessageHandler) Send(c echo.Context) error {
	sentBy, err := staffID(c)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	msg, err := h.dispatcher.SendReply(c.Request().Context(), req.ConversationID, req.Content, sentBy)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// ListDispatches returns every delivery attempt for a conversation, failed ones included.
func (h *MessageHandler) ListDispatches(c echo.Context) error {
	items, err := h.dispatcher.Logs(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}
