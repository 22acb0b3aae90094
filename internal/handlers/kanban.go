package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/kanban"
)

// KanbanHandler manages the pipeline stage board.
type KanbanHandler struct {
	stages *kanban.Service
	logger *slog.Logger
}

type reorderRequest struct {
	StatusIDs []string `json:"statusIds" validate:"required,min=1,dive,uuid"`
}

func NewKanbanHandler(log *slog.Logger, service *kanban.Service) *KanbanHandler {
	if log == nil {
		log = slog.Default()
	}
	return &KanbanHandler{stages: service, logger: log.With(slog.String("handler", "kanban"))}
}

func (h *KanbanHandler) Register(e *echo.Echo) {
	g := e.Group(APIPrefix + "/kanban/statuses")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/reorder", h.Reorder)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *KanbanHandler) List(c echo.Context) error {
	items, err := h.stages.ListStages(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *KanbanHandler) Create(c echo.Context) error {
	var req kanban.CreateStageInput
	if err := bind(c, &req); err != nil {
		return err
	}
	stage, err := h.stages.CreateStage(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, stage)
}

func (h *KanbanHandler) Update(c echo.Context) error {
	var req kanban.UpdateStageInput
	if err := bind(c, &req); err != nil {
		return err
	}
	stage, err := h.stages.UpdateStage(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stage)
}

// Delete removes the stage; clients already in it keep their status slug.
func (h *KanbanHandler) Delete(c echo.Context) error {
	if err := h.stages.DeleteStage(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *KanbanHandler) Reorder(c echo.Context) error {
	var req reorderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	items, err := h.stages.ReorderStages(c.Request().Context(), req.StatusIDs)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}
