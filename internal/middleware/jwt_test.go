package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/jwozniak/car-workshop/internal/utils"
)

const guardSecret = "guard-test-secret"

// echoWithGuard mounts a probe handler behind JWTAuth that echoes the
// injected user id.
func echoWithGuard(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.GET("/probe", func(c echo.Context) error {
		uid, ok := c.Get("user_id").(uint64)
		require.True(t, ok, "guard must inject user_id as uint64")
		return c.JSON(http.StatusOK, echo.Map{"user_id": uid})
	}, JWTAuth(guardSecret))
	return e
}

func probe(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	rec := probe(echoWithGuard(t), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"No token, authorization denied"}`, rec.Body.String())
}

func TestJWTAuth_MissingTokenSegment(t *testing.T) {
	e := echoWithGuard(t)
	for _, header := range []string{"Bearer", "Bearer ", "Token abc"} {
		rec := probe(e, header)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		require.JSONEq(t, `{"message":"Authorization token not found"}`, rec.Body.String(), "header %q", header)
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	rec := probe(echoWithGuard(t), "Bearer not.a.token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"Token is not valid"}`, rec.Body.String())
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("a different secret", 4, 60)
	require.NoError(t, err)

	rec := probe(echoWithGuard(t), "Bearer "+at.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"Token is not valid"}`, rec.Body.String())
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	// Sign an already-expired token directly; NewAccessToken only issues
	// future expiries.
	claims := jwt.MapClaims{
		"userId": uint64(4),
		"exp":    time.Now().UTC().Add(-time.Hour).Unix(),
		"iat":    time.Now().UTC().Add(-2 * time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(guardSecret))
	require.NoError(t, err)

	rec := probe(echoWithGuard(t), "Bearer "+signed)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"Token is not valid"}`, rec.Body.String())
}

func TestJWTAuth_ValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(guardSecret, 42, 60)
	require.NoError(t, err)

	rec := probe(echoWithGuard(t), "Bearer "+at.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"user_id":42}`, rec.Body.String())
}
