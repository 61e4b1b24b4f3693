package handler

import (
	"chatapp/backend/internal/config"
	"chatapp/backend/internal/storage"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// tokenFromRequest reads the JWT from the auth cookie, falling back to a
// Bearer Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(config.JWTCookieName); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// ProtectRoute rejects requests without a valid token and stores the
// authenticated user in the context.
func (h *Handler) ProtectRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - No Token Provided"})
			return
		}

		userID, err := parseJWT(tokenString, []byte(h.Config.JWTSecret))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Invalid Token"})
			return
		}

		user, err := h.Storage.GetUserByID(c.Request.Context(), userID)
		if errors.Is(err, storage.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - User not found"})
			return
		}
		if err != nil {
			log.Printf("ERROR: Failed to load user %s: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}
