package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/accounts"
	"github.com/acoustichub/crm/internal/auth"
	"github.com/acoustichub/crm/internal/config"
)

// AuthHandler serves login and the signed-in user's self service.
type AuthHandler struct {
	accounts  *accounts.Service
	secret    string
	expiresIn time.Duration
	logger    *slog.Logger
}

type refreshResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewAuthHandler(log *slog.Logger, service *accounts.Service, cfg config.AuthConfig) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		accounts:  service,
		secret:    cfg.JWTSecret,
		expiresIn: cfg.ExpiresIn(),
		logger:    log.With(slog.String("handler", "auth")),
	}
}

func (h *AuthHandler) Register(e *echo.Echo) {
	g := e.Group(APIPrefix + "/auth")
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.GET("/me", h.Me)
	g.PATCH("/profile", h.UpdateProfile)
	g.POST("/change-password", h.ChangePassword)
}

// Login godoc
// @Summary Exchange credentials for an access token
// @Tags auth
// @Param payload body accounts.LoginInput true "Credentials"
// @Success 200 {object} accounts.Session
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req accounts.LoginInput
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.accounts.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Info("login rejected", slog.String("email", req.Email), slog.Any("error", err))
		return httpError(err)
	}
	return c.JSON(http.StatusOK, session)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	token, expiresAt, err := auth.RefreshTokenFromContext(c, h.secret, h.expiresIn)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refreshResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Success 200 {object} accounts.Account
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := staffID(c)
	if err != nil {
		return err
	}
	account, err := h.accounts.Active(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, err := staffID(c)
	if err != nil {
		return err
	}
	var req accounts.ProfileInput
	if err := bind(c, &req); err != nil {
		return err
	}
	account, err := h.accounts.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := staffID(c)
	if err != nil {
		return err
	}
	var req accounts.ChangePasswordInput
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ChangePassword(c.Request().Context(), userID, req); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
