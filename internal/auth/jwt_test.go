package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, signed, secret string) *jwt.Token {
	t.Helper()
	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	return token
}

func TestGenerateTokenCarriesStaffClaims(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	signed, expiresAt, err := GenerateToken(Claims{UserID: "u-1", Email: "op@acoustic.uz", RoleID: "r-1"}, "s3cret", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	c.Set("user", parse(t, signed, "s3cret"))
	claims, err := ClaimsFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "u-1", Email: "op@acoustic.uz", RoleID: "r-1"}, claims)

	userID, err := UserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestGenerateTokenRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, _, err := GenerateToken(Claims{}, "s", time.Hour)
	assert.Error(t, err)
	_, _, err = GenerateToken(Claims{UserID: "u"}, " ", time.Hour)
	assert.Error(t, err)
	_, _, err = GenerateToken(Claims{UserID: "u"}, "s", 0)
	assert.Error(t, err)
}

func TestRefreshTokenFromContext(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	secret := "test-secret"

	initial, _, err := GenerateToken(Claims{UserID: "user-123", RoleID: "admin-role"}, secret, 5*time.Minute)
	require.NoError(t, err)
	token := parse(t, initial, secret)
	c.Set("user", token)

	// iat has second resolution
	time.Sleep(time.Second)

	refreshed, expiresAt, err := RefreshTokenFromContext(c, secret, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed)

	original := token.Claims.(jwt.MapClaims)
	next := parse(t, refreshed, secret).Claims.(jwt.MapClaims)
	assert.Equal(t, "user-123", next[claimSubject])
	assert.Equal(t, "user-123", next[claimUserID])
	assert.Equal(t, "admin-role", next[claimRoleID])

	origIat := int64(original["iat"].(float64))
	newIat := int64(next["iat"].(float64))
	newExp := int64(next["exp"].(float64))
	assert.Greater(t, newIat, origIat)
	assert.Equal(t, int64(5*60), newExp-newIat, "original lifetime is kept")
	assert.Equal(t, expiresAt.Unix(), newExp)
}

func TestRefreshTokenFromContext_MissingUser(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())

	_, _, err := RefreshTokenFromContext(c, "test-secret", time.Hour)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "invalid token", httpErr.Message)
}
