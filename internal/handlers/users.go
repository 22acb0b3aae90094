package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/accounts"
)

// UsersHandler manages staff accounts.
type UsersHandler struct {
	service *accounts.Service
	logger  *slog.Logger
}

func NewUsersHandler(log *slog.Logger, service *accounts.Service) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UsersHandler{
		service: service,
		logger:  log.With(slog.String("handler", "users")),
	}
}

func (h *UsersHandler) Register(e *echo.Echo) {
	g := e.Group(APIPrefix + "/users")
	g.GET("", h.ListUsers)
	g.POST("", h.CreateUser)
	g.GET("/roles", h.ListRoles)
	g.GET("/roles/permissions", h.ListPermissions, h.requireSuperAdmin)
	g.GET("/roles/with-permissions", h.RolesWithPermissions, h.requireSuperAdmin)
	g.PUT("/roles/:roleId/permissions", h.SetRolePermissions, h.requireSuperAdmin)
	g.GET("/:id", h.GetUser)
	g.PUT("/:id", h.UpdateUser)
	g.DELETE("/:id", h.DeleteUser)
}

// ListUsers godoc
// @Summary List staff users
// @Tags users
// @Success 200 {array} accounts.Account
// @Failure 500 {object} ErrorResponse
// @Router /users [get]
func (h *UsersHandler) ListUsers(c echo.Context) error {
	items, err := h.service.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// GetUser godoc
// @Summary Get user by ID
// @Tags users
// @Param id path string true "User ID"
// @Success 200 {object} accounts.Account
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UsersHandler) GetUser(c echo.Context) error {
	account, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account)
}

// CreateUser godoc
// @Summary Create staff user
// @Tags users
// @Param payload body accounts.CreateInput true "User payload"
// @Success 201 {object} accounts.Account
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users [post]
func (h *UsersHandler) CreateUser(c echo.Context) error {
	var req accounts.CreateInput
	if err := bind(c, &req); err != nil {
		return err
	}
	account, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	h.logger.Info("user created", slog.String("user_id", account.ID), slog.String("role", account.Role))
	return c.JSON(http.StatusCreated, account)
}

// UpdateUser godoc
// @Summary Update staff user
// @Description Partial update; a password field resets the password
// @Tags users
// @Param id path string true "User ID"
// @Param payload body accounts.UpdateInput true "Fields to change"
// @Success 200 {object} accounts.Account
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UsersHandler) UpdateUser(c echo.Context) error {
	var req accounts.UpdateInput
	if err := bind(c, &req); err != nil {
		return err
	}
	account, err := h.service.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account)
}

func (h *UsersHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	if self, err := staffID(c); err == nil && self == id {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete the signed-in user")
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHandler) ListRoles(c echo.Context) error {
	roles, err := h.service.ListRoles(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *UsersHandler) requireSuperAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := staffID(c)
		if err != nil {
			return err
		}
		if err := h.service.RequireSuperAdmin(c.Request().Context(), userID); err != nil {
			return httpError(err)
		}
		return next(c)
	}
}

// ListPermissions godoc
// @Summary List every permission
// @Tags users
// @Success 200 {array} accounts.Permission
// @Failure 403 {object} ErrorResponse
// @Router /users/roles/permissions [get]
func (h *UsersHandler) ListPermissions(c echo.Context) error {
	items, err := h.service.ListPermissions(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// RolesWithPermissions godoc
// @Summary List roles with their granted permission ids
// @Tags users
// @Success 200 {array} accounts.RolePermissions
// @Failure 403 {object} ErrorResponse
// @Router /users/roles/with-permissions [get]
func (h *UsersHandler) RolesWithPermissions(c echo.Context) error {
	items, err := h.service.RolesWithPermissions(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// SetRolePermissions godoc
// @Summary Replace the permissions of a role
// @Description The super_admin role cannot be changed
// @Tags users
// @Param roleId path string true "Role ID"
// @Param payload body accounts.SetPermissionsInput true "Permission ids"
// @Success 200 {object} accounts.RolePermissions
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/roles/{roleId}/permissions [put]
func (h *UsersHandler) SetRolePermissions(c echo.Context) error {
	var req accounts.SetPermissionsInput
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.service.SetRolePermissions(c.Request().Context(), c.Param("roleId"), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, role)
}
