package api

import (
	"net/http"
	"time"

	apperrors "persona-chat/backend/pkg/errors"
	"persona-chat/backend/pkg/logger"
	"persona-chat/backend/pkg/middleware"
	"persona-chat/backend/pkg/observability"
	"persona-chat/backend/pkg/session"

	"github.com/gin-gonic/gin"
)

// RouterConfig carries everything the route layer needs
type RouterConfig struct {
	Auth          *AuthHandler
	Characters    *CharacterHandler
	Conversations *ConversationHandler
	Messages      *MessageHandler
	Sessions      session.Store
	CookieName    string
	Logger        *logger.Logger
	AuthLimiter   *middleware.RateLimiter
}

// NewRouter builds the gin engine with all routes and middleware attached
func NewRouter(cfg RouterConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(apperrors.RecoveryWithLogger(cfg.Logger))
	engine.Use(middleware.RequestID())
	engine.Use(observability.MetricsMiddleware())
	engine.Use(requestLogger(cfg.Logger))
	engine.Use(apperrors.ErrorHandler(cfg.Logger))

	requireAuth := SessionAuth(cfg.Sessions, cfg.CookieName)

	root := engine.Group("/api")
	{
		root.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := root.Group("/auth")
		if cfg.AuthLimiter != nil {
			auth.Use(cfg.AuthLimiter.Middleware())
		}
		{
			auth.POST("/register", cfg.Auth.Register)
			auth.POST("/login", cfg.Auth.Login)
			auth.POST("/logout", requireAuth, cfg.Auth.Logout)
			auth.GET("/me", requireAuth, cfg.Auth.Me)
		}

		characters := root.Group("/characters", requireAuth)
		{
			characters.GET("", cfg.Characters.ListCharacters)
			characters.POST("", cfg.Characters.CreateCharacter)
			characters.GET("/:id", cfg.Characters.GetCharacter)
			characters.DELETE("/:id", cfg.Characters.DeleteCharacter)
		}

		conversations := root.Group("/conversations", requireAuth)
		{
			conversations.GET("", cfg.Conversations.ListConversations)
			conversations.POST("", cfg.Conversations.CreateConversation)
			conversations.GET("/:id", cfg.Conversations.GetConversation)
			conversations.DELETE("/:id", cfg.Conversations.DeleteConversation)
			conversations.POST("/:id/messages", cfg.Messages.SendMessage)
		}
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return engine
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.WithRequestID(c.GetString("requestID")).
			LogRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
