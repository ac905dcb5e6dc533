package api

import (
	"errors"
	"net/http"

	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/service"
	"persona-chat/backend/internal/store"
	"persona-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ConversationHandler handles conversation endpoints
type ConversationHandler struct {
	conversations *service.ConversationService
	logger        *logger.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversations *service.ConversationService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, logger: log}
}

// ListConversations returns the user's conversations sorted by recency
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	conversations, err := h.conversations.ListConversations(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		h.logger.LogError(err, "failed to list conversations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// CreateConversation starts a chat with a character, seeding its greeting
// when present
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	var req models.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "character_id is required"})
		return
	}

	conversation, err := h.conversations.CreateConversation(c.Request.Context(), CurrentUserID(c), req.CharacterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
			return
		}
		h.logger.LogError(err, "failed to create conversation", "character_id", req.CharacterID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}
	c.JSON(http.StatusCreated, conversation)
}

// GetConversation returns a conversation with its character and ordered
// messages
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	detail, err := h.conversations.GetConversation(c.Request.Context(), CurrentUserID(c), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		h.logger.LogError(err, "failed to fetch conversation", "conversation_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteConversation removes a conversation and cascades to its messages
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.conversations.DeleteConversation(c.Request.Context(), CurrentUserID(c), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return
		}
		h.logger.LogError(err, "failed to delete conversation", "conversation_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete conversation"})
		return
	}
	c.Status(http.StatusNoContent)
}
