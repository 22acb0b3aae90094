// Package handlers exposes the CRM services over the /api/v1 REST surface.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/acoustichub/crm/internal/accounts"
	"github.com/acoustichub/crm/internal/auth"
	"github.com/acoustichub/crm/internal/branches"
	"github.com/acoustichub/crm/internal/channel"
	"github.com/acoustichub/crm/internal/clients"
	"github.com/acoustichub/crm/internal/comments"
	"github.com/acoustichub/crm/internal/conversation"
	"github.com/acoustichub/crm/internal/identity"
	"github.com/acoustichub/crm/internal/integrations"
	"github.com/acoustichub/crm/internal/kanban"
	messagepkg "github.com/acoustichub/crm/internal/message"
	"github.com/acoustichub/crm/internal/outbound"
	"github.com/acoustichub/crm/internal/sms"
)

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

// ErrorResponse is the JSON body echo writes for an HTTPError.
type ErrorResponse struct {
	Message string `json:"message"`
}

// RequestValidator adapts go-playground/validator to echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err.Error()
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Param() != "" {
			parts = append(parts, f.Field()+" must satisfy "+f.Tag()+"="+f.Param())
			continue
		}
		parts = append(parts, f.Field()+" is "+f.Tag())
	}
	return strings.Join(parts, "; ")
}

// bind decodes the request body and runs the echo validator when one is set.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func staffID(c echo.Context) (string, error) {
	return auth.UserIDFromContext(c)
}

func queryLimit(c echo.Context) int {
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var (
	notFoundErrors = []error{
		clients.ErrClientNotFound,
		clients.ErrAlreadyMerged,
		conversation.ErrConversationNotFound,
		comments.ErrCommentNotFound,
		kanban.ErrStageNotFound,
		integrations.ErrIntegrationNotFound,
		branches.ErrBranchNotFound,
		accounts.ErrUserNotFound,
	}
	badRequestErrors = []error{
		clients.ErrInvalidClient,
		clients.ErrInvalidClientID,
		clients.ErrSelfMerge,
		conversation.ErrInvalidConversation,
		messagepkg.ErrInvalid,
		comments.ErrInvalid,
		comments.ErrReplyUnsupported,
		kanban.ErrInvalidStage,
		kanban.ErrInvalidStatus,
		integrations.ErrUnsupportedPlatform,
		integrations.ErrTermsRequired,
		integrations.ErrTermsExpired,
		integrations.ErrInvalidConfig,
		branches.ErrInvalidBranch,
		sms.ErrInvalidRequest,
		outbound.ErrInvalidReply,
		identity.ErrUnsupportedPlatform,
		identity.ErrMissingUserID,
		accounts.ErrInvalidUser,
		accounts.ErrRoleNotFound,
		accounts.ErrInvalidPermission,
		accounts.ErrInvalidPassword,
		channel.ErrConfigNotFound,
	}
	conflictErrors = []error{
		kanban.ErrSlugTaken,
		accounts.ErrEmailTaken,
	}
	upstreamErrors = []error{
		outbound.ErrDeliveryFailed,
		comments.ErrReplyFailed,
		sms.ErrSendFailed,
	}
	unauthorizedErrors = []error{
		accounts.ErrInvalidCredentials,
		accounts.ErrInactive,
	}
	forbiddenErrors = []error{
		accounts.ErrForbidden,
		accounts.ErrRoleLocked,
	}
)

// httpError maps a service error to an echo.HTTPError. Errors already carrying
// a status pass through; anything unknown is a 500. Delivery failures win over
// their wrapped cause, so a send without credentials is still a 502.
func httpError(err error) error {
	if err == nil {
		return nil
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	switch {
	case isAny(err, upstreamErrors):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case isAny(err, notFoundErrors):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case isAny(err, badRequestErrors):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case isAny(err, conflictErrors):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case isAny(err, unauthorizedErrors):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case isAny(err, forbiddenErrors):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
