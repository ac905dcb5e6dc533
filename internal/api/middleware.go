package api

import (
	apperrors "persona-chat/backend/pkg/errors"
	"persona-chat/backend/pkg/session"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "userID"

// SessionAuth resolves the session cookie against the server-side store and
// attaches the user ID to the request context. Requests without a live
// session are rejected with 401.
func SessionAuth(sessions session.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Error(apperrors.NewUnauthorizedError("Authentication required"))
			c.Abort()
			return
		}

		userID, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			c.Error(apperrors.NewUnauthorizedError("Authentication required"))
			c.Abort()
			return
		}

		c.Set(contextUserKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user for this request. It is only
// valid behind SessionAuth.
func CurrentUserID(c *gin.Context) uint {
	if v, exists := c.Get(contextUserKey); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
