// Package auth validates the bearer tokens issued to GraceCast tenants.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrUnauthorized = errors.New("unauthorized - missing required permissions")
)

// Claims represents GraceCast JWT claims with custom app_metadata
type Claims struct {
	Sub   string `json:"sub"`   // User ID
	Email string `json:"email"` // User email
	Role  string `json:"role"`  // authenticated, service, etc.

	AppMetadata AppMetadata `json:"app_metadata"`

	jwt.RegisteredClaims
}

// AppMetadata contains custom user metadata
type AppMetadata struct {
	Permissions []string `json:"permissions"`
	Role        string   `json:"role"`
	Church      string   `json:"church,omitempty"`
}

// HasPermission checks if the user has a specific permission
func (c *Claims) HasPermission(permission string) bool {
	for _, p := range c.AppMetadata.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// HasAnyPermission checks if the user has any of the specified permissions
func (c *Claims) HasAnyPermission(permissions ...string) bool {
	for _, permission := range permissions {
		if c.HasPermission(permission) {
			return true
		}
	}
	return false
}

// Service validates HS256 bearer tokens against a shared signing secret.
type Service struct {
	secret         []byte
	devAuthEnabled bool
	devAuthToken   string
}

// NewService creates a new auth service
func NewService(secret string) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	return &Service{secret: []byte(secret)}, nil
}

// SetDevAuth configures development authentication bypass
func (s *Service) SetDevAuth(enabled bool, token string) {
	s.devAuthEnabled = enabled
	s.devAuthToken = token
}

// ValidateToken parses and validates a bearer token, returning its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	if s.devAuthEnabled && s.devAuthToken != "" && tokenString == s.devAuthToken {
		return DevClaims(), nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Sub == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DevClaims returns the synthetic claims used when auth is bypassed in
// development.
func DevClaims() *Claims {
	return &Claims{
		Sub:   "dev-user",
		Email: "dev@localhost",
		Role:  "authenticated",
		AppMetadata: AppMetadata{
			Permissions: []string{"podcasts:read", "podcasts:write", "podcasts:admin"},
			Role:        "admin",
		},
	}
}
