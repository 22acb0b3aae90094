package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	claimSubject  = "sub"
	claimUserID   = "user_id"
	claimEmail    = "email"
	claimRoleID   = "role_id"
	claimBranchID = "branch_id"
	claimIssued   = "iat"
	claimExpires  = "exp"
)

// Claims is the staff identity carried by an access token.
type Claims struct {
	UserID   string
	Email    string
	RoleID   string
	BranchID string
}

// JWTMiddleware returns a JWT auth middleware configured for HS256 tokens.
func JWTMiddleware(secret string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		TokenLookup:   "header:Authorization:Bearer ,query:token",
		Skipper:       skipper,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	})
}

// UserIDFromContext extracts the user id from JWT claims.
func UserIDFromContext(c echo.Context) (string, error) {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ClaimsFromContext returns the staff claims of the validated request token.
func ClaimsFromContext(c echo.Context) (Claims, error) {
	raw, err := mapClaims(c)
	if err != nil {
		return Claims{}, err
	}
	claims := Claims{
		UserID:   claimString(raw, claimUserID),
		Email:    claimString(raw, claimEmail),
		RoleID:   claimString(raw, claimRoleID),
		BranchID: claimString(raw, claimBranchID),
	}
	if claims.UserID == "" {
		claims.UserID = claimString(raw, claimSubject)
	}
	if claims.UserID == "" {
		return Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "user id missing")
	}
	return claims, nil
}

// GenerateToken creates a signed JWT for the user.
func GenerateToken(claims Claims, secret string, expiresIn time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(claims.UserID) == "" {
		return "", time.Time{}, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, fmt.Errorf("jwt secret is required")
	}
	if expiresIn <= 0 {
		return "", time.Time{}, fmt.Errorf("jwt expires in must be positive")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(expiresIn)
	payload := jwt.MapClaims{
		claimSubject: claims.UserID,
		claimUserID:  claims.UserID,
		claimIssued:  now.Unix(),
		claimExpires: expiresAt.Unix(),
	}
	if claims.Email != "" {
		payload[claimEmail] = claims.Email
	}
	if claims.RoleID != "" {
		payload[claimRoleID] = claims.RoleID
	}
	if claims.BranchID != "" {
		payload[claimBranchID] = claims.BranchID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// RefreshTokenFromContext issues a fresh token with the same claims and
// lifetime as the request token. defaultExpiresIn is used when the original
// lifetime cannot be derived.
func RefreshTokenFromContext(c echo.Context, secret string, defaultExpiresIn time.Duration) (string, time.Time, error) {
	raw, err := mapClaims(c)
	if err != nil {
		return "", time.Time{}, err
	}
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresIn := defaultExpiresIn
	iat, iatOK := claimUnix(raw, claimIssued)
	exp, expOK := claimUnix(raw, claimExpires)
	if iatOK && expOK && exp > iat {
		expiresIn = time.Duration(exp-iat) * time.Second
	}
	return GenerateToken(claims, secret, expiresIn)
}

func mapClaims(c echo.Context) (jwt.MapClaims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func claimUnix(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	raw, ok := claims[key]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(raw)
	}
}
