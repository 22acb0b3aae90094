package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/comments"
)

type CommentsHandler struct {
	comments *comments.Service
	logger   *slog.Logger
}

type replyRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

func NewCommentsHandler(log *slog.Logger, service *comments.Service) *CommentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CommentsHandler{comments: service, logger: log.With(slog.String("handler", "comments"))}
}

func (h *CommentsHandler) Register(e *echo.Echo) {
	g := e.Group(APIPrefix + "/comments")
	g.GET("", h.List)
	g.POST("/:id/reply", h.Reply)
}

func (h *CommentsHandler) List(c echo.Context) error {
	items, err := h.comments.List(c.Request().Context(), comments.ListFilter{
		Platform: c.QueryParam("platform"),
		ClientID: c.QueryParam("clientId"),
		Limit:    queryLimit(c),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CommentsHandler) Reply(c echo.Context) error {
	repliedBy, err := staffID(c)
	if err != nil {
		return err
	}
	var req replyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Reply(c.Request().Context(), c.Param("id"), req.Text, repliedBy)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comment)
}
