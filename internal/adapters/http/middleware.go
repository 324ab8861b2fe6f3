package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RequireAdmin gates mutating routes behind a Bearer token carrying an
// admin role claim. Reads stay open.
func RequireAdmin(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			respond(c, http.StatusUnauthorized, "Authentication required.", nil)
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			respond(c, http.StatusUnauthorized, "Invalid or expired token.", nil)
			c.Abort()
			return
		}
		if role, _ := claims["role"].(string); role != "admin" {
			respond(c, http.StatusForbidden, "Admin access only.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
