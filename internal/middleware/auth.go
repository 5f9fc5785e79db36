package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rentfunnel/internal/pkg/jwt"
	"rentfunnel/internal/pkg/response"
)

// AuthCookie carries the token for browser clients that do not send headers
const AuthCookie = "rent_excellence_token"

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxEmail  = "email"
)

// JWTAuth requires a valid token from the Authorization header or the auth cookie
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, code, msg)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and never aborts
func OptionalAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, _, _ := extractToken(c); token != "" {
			if claims, err := jwtService.ValidateToken(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) (token, code, msg string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
		}
		return strings.TrimSpace(parts[1]), "", ""
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil && cookie != "" {
		return cookie, "", ""
	}
	return "", "AUTH_HEADER_MISSING", "Authorization header is required"
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, claims.Role)
	c.Set(ctxEmail, claims.Email)
}

// UserID returns the authenticated user id, or "" for anonymous requests
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// UserIDPtr is UserID as an optional value
func UserIDPtr(c *gin.Context) *string {
	id := UserID(c)
	if id == "" {
		return nil
	}
	return &id
}

func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}
