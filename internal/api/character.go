package api

import (
	"errors"
	"net/http"
	"strconv"

	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/service"
	"persona-chat/backend/internal/store"
	"persona-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CharacterHandler handles character CRUD endpoints
type CharacterHandler struct {
	characters *service.CharacterService
	logger     *logger.Logger
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(characters *service.CharacterService, log *logger.Logger) *CharacterHandler {
	return &CharacterHandler{characters: characters, logger: log}
}

// ListCharacters returns the user's characters plus shared presets
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	characters, err := h.characters.ListCharacters(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		h.logger.LogError(err, "failed to list characters")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch characters"})
		return
	}
	c.JSON(http.StatusOK, characters)
}

// GetCharacter returns a single character visible to the user
func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	character, err := h.characters.GetCharacter(c.Request.Context(), CurrentUserID(c), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
			return
		}
		h.logger.LogError(err, "failed to fetch character", "character_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch character"})
		return
	}
	c.JSON(http.StatusOK, character)
}

// CreateCharacter creates a character owned by the user
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid character data"})
		return
	}

	character, err := h.characters.CreateCharacter(c.Request.Context(), CurrentUserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCharacterNameRequired),
			errors.Is(err, service.ErrCharacterDescRequired),
			errors.Is(err, service.ErrCharacterPromptRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.LogError(err, "failed to create character")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create character"})
		}
		return
	}
	c.JSON(http.StatusCreated, character)
}

// DeleteCharacter removes a character the user owns
func (h *CharacterHandler) DeleteCharacter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.characters.DeleteCharacter(c.Request.Context(), CurrentUserID(c), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
			return
		}
		h.logger.LogError(err, "failed to delete character", "character_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete character"})
		return
	}
	c.Status(http.StatusNoContent)
}

// parseIDParam reads the :id path parameter, writing a 400 response when it
// is not a number
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}
