package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	authservice "github.com/gracecast/gracecast-api/internal/services/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

func setupRouter(t *testing.T, handler *Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	protected := engine.Group("/api/v1")
	protected.Use(handler.AuthMiddleware())
	protected.GET("/me", handler.Me)
	protected.GET("/admin", handler.RequirePermission("podcasts:admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func newHandler(t *testing.T) *Handler {
	t.Helper()
	svc, err := authservice.NewService(testSecret)
	require.NoError(t, err)
	return NewHandler(svc)
}

func signedToken(t *testing.T, permissions []string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &authservice.Claims{
		Sub:   "user-1",
		Email: "pastor@church.org",
		AppMetadata: authservice.AppMetadata{
			Permissions: permissions,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	engine := setupRouter(t, newHandler(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareBadFormat(t *testing.T) {
	engine := setupRouter(t, newHandler(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Token abc")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	engine := setupRouter(t, newHandler(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, []string{"podcasts:read"}))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pastor@church.org")
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	engine := setupRouter(t, newHandler(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareDevSkip(t *testing.T) {
	handler := newHandler(t)
	handler.SetDevAuth(true, "SKIP_AUTH")
	engine := setupRouter(t, handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dev-user")
}

func TestRequirePermission(t *testing.T) {
	engine := setupRouter(t, newHandler(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, []string{"podcasts:read"}))
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, []string{"podcasts:admin"}))
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
