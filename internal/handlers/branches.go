package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/branches"
)

type BranchesHandler struct {
	branches *branches.Service
	logger   *slog.Logger
}

func NewBranchesHandler(log *slog.Logger, service *branches.Service) *BranchesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BranchesHandler{branches: service, logger: log.With(slog.String("handler", "branches"))}
}

func (h *BranchesHandler) Register(e *echo.Echo) {
	g := e.Group(APIPrefix + "/branches")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *BranchesHandler) List(c echo.Context) error {
	items, err := h.branches.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BranchesHandler) Get(c echo.Context) error {
	branch, err := h.branches.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, branch)
}

func (h *BranchesHandler) Create(c echo.Context) error {
	var req branches.Input
	if err := bind(c, &req); err != nil {
		return err
	}
	branch, err := h.branches.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, branch)
}

func (h *BranchesHandler) Update(c echo.Context) error {
	var req branches.Input
	if err := bind(c, &req); err != nil {
		return err
	}
	branch, err := h.branches.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, branch)
}

func (h *BranchesHandler) Delete(c echo.Context) error {
	if err := h.branches.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
