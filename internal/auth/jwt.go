package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminIDKey contextKey = "adminID"

// JWTConfig holds JWT configuration for the admin dashboard routes.
type JWTConfig struct {
	SecretKey string
	AdminKey  string // Development shortcut, see RequireAdmin
}

// NewJWTConfig creates a new JWT config
func NewJWTConfig(secretKey, adminKey string) *JWTConfig {
	if secretKey == "" {
		secretKey = "default-secret-key-change-in-production" // Default for development
	}
	return &JWTConfig{SecretKey: secretKey, AdminKey: adminKey}
}

// RequireAdmin creates a middleware that only lets authenticated admins
// through. Lead submission and chat stay public; everything that reads or
// mutates captured leads goes behind this.
func (c *JWTConfig) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Development mode: allow a shared X-Admin-Key header
		if c.AdminKey != "" && r.Header.Get("X-Admin-Key") == c.AdminKey {
			ctx := context.WithValue(r.Context(), adminIDKey, "dev-admin")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		tokenString := parts[1]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(c.SecretKey), nil
		})

		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "Invalid token claims", http.StatusUnauthorized)
			return
		}

		role, _ := claims["role"].(string)
		if role != "admin" {
			http.Error(w, "Admin role required", http.StatusForbidden)
			return
		}

		adminID, _ := claims["sub"].(string)
		ctx := context.WithValue(r.Context(), adminIDKey, adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdminID extracts the authenticated admin's ID from context
func GetAdminID(ctx context.Context) string {
	if adminID, ok := ctx.Value(adminIDKey).(string); ok {
		return adminID
	}
	return ""
}
