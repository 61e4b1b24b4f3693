package handler

import (
	"chatapp/backend/internal/chat"
	"chatapp/backend/internal/models"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage stores a message from the current user to the user in the path
// and pushes it to the receiver if they are online.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sender := currentUser(c)
	msg, err := h.Chat.SendMessage(c.Request.Context(), sender.ID, c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// GetMessages returns the conversation history between the current user and
// the user in the path, oldest first.
func (h *Handler) GetMessages(c *gin.Context) {
	user := currentUser(c)
	msgs, err := h.Chat.ListMessages(c.Request.Context(), user.ID, c.Param("id"))
	if errors.Is(err, chat.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"messages": []models.Message{}})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// GetUsersForSidebar lists every other user.
func (h *Handler) GetUsersForSidebar(c *gin.Context) {
	user := currentUser(c)
	users, err := h.Chat.SidebarUsers(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
