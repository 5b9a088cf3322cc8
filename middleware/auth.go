package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by AuthMiddleware.
const (
	ContextToken  = "token"
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// AuthMiddleware validates the upstream-issued bearer token before any
// proxied call goes out. An expired or invalid token ends the session with
// 401, which sends the console back to login. WebSocket endpoints carry
// the token as a query parameter since browsers cannot set headers on
// WebSocket connects.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if v, ok := claims["user_id"].(string); ok {
				c.Set(ContextUserID, v)
			}
			if v, ok := claims["email"].(string); ok {
				c.Set(ContextEmail, v)
			}
			if v, ok := claims["role"].(string); ok {
				c.Set(ContextRole, v)
			}
		}
		c.Set(ContextToken, tokenString)

		c.Next()
	}
}
