// Package handler holds the gin HTTP and WebSocket handlers of the chat API.
package handler

import (
	"chatapp/backend/internal/chat"
	"chatapp/backend/internal/chathub"
	"chatapp/backend/internal/config"
	"chatapp/backend/internal/models"
	"chatapp/backend/internal/storage"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// Handler bundles the services the HTTP layer talks to.
type Handler struct {
	Chat    *chat.Service
	Hub     *chathub.ManagerService
	Storage storage.Storage
	Config  config.Config
}

func NewHandler(chatSvc *chat.Service, hub *chathub.ManagerService, s storage.Storage, cfg config.Config) *Handler {
	return &Handler{
		Chat:    chatSvc,
		Hub:     hub,
		Storage: s,
		Config:  cfg,
	}
}

// currentUser returns the user ProtectRoute stored in the context.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// respondError maps chat errors onto HTTP statuses. Internal details stay in
// the server log.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
