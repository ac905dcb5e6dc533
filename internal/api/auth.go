package api

import (
	"errors"
	"net/http"
	"time"

	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/service"
	"persona-chat/backend/pkg/logger"
	"persona-chat/backend/pkg/session"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	users        *service.UserService
	sessions     session.Store
	logger       *logger.Logger
	cookieName   string
	sessionTTL   time.Duration
	cookieSecure bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *service.UserService, sessions session.Store, log *logger.Logger, cookieName string, sessionTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessions:     sessions,
		logger:       log,
		cookieName:   cookieName,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}
}

// Register handles account creation
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "A user with this username already exists"})
		case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.LogError(err, "failed to create user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	c.JSON(http.StatusCreated, user.ToResponse())
}

// Login verifies credentials and starts a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		h.logger.LogError(err, "login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during login"})
		return
	}

	token, err := h.sessions.Create(c.Request.Context(), user.ID, h.sessionTTL)
	if err != nil {
		h.logger.LogError(err, "failed to create session", "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during login"})
		return
	}

	h.setSessionCookie(c, token, int(h.sessionTTL.Seconds()))
	h.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	c.JSON(http.StatusOK, user.ToResponse())
}

// Logout ends the current session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookieName); err == nil && token != "" {
		if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
			h.logger.LogError(err, "failed to delete session")
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetUserByID(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", h.cookieSecure, true)
}
