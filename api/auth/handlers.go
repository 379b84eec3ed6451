package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gracecast/gracecast-api/internal/services/auth"
)

// Handler manages auth endpoints and middleware
type Handler struct {
	authService    *auth.Service
	devAuthToken   string
	devAuthEnabled bool
}

// NewHandler creates a new auth handler
func NewHandler(authService *auth.Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

// SetDevAuth configures dev auth settings for the handler
func (h *Handler) SetDevAuth(enabled bool, token string) {
	h.devAuthEnabled = enabled
	h.devAuthToken = token
	h.authService.SetDevAuth(enabled, token)
}

// Me returns current user info from JWT
// @Summary Get current user
// @Description Get current user information from the bearer token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/me [get]
func (h *Handler) Me(c *gin.Context) {
	claims, exists := c.Get("claims")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	authClaims := claims.(*auth.Claims)
	c.JSON(http.StatusOK, gin.H{
		"id":          authClaims.Sub,
		"email":       authClaims.Email,
		"role":        authClaims.AppMetadata.Role,
		"church":      authClaims.AppMetadata.Church,
		"permissions": authClaims.AppMetadata.Permissions,
	})
}

// AuthMiddleware validates bearer tokens
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip auth entirely in development mode if configured
		if h.devAuthEnabled && h.devAuthToken == "SKIP_AUTH" {
			setClaims(c, auth.DevClaims())
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := h.authService.ValidateToken(parts[1])
		if err != nil {
			if err == auth.ErrUnauthorized {
				c.JSON(http.StatusForbidden, gin.H{"error": "Access denied - insufficient permissions"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			}
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequirePermission creates middleware that requires specific permissions
func (h *Handler) RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := c.Get("claims")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		authClaims := claims.(*auth.Claims)
		if !authClaims.HasAnyPermission(permissions...) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":                "Insufficient permissions",
				"required_permissions": permissions,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set("claims", claims)
	c.Set("user_id", claims.Sub)
	c.Set("email", claims.Email)
	c.Set("permissions", claims.AppMetadata.Permissions)
	c.Set("role", claims.AppMetadata.Role)
}
