package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"property_portal/internal/model"
	"property_portal/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "session"

const (
	AuthUserKey    = "authUser"
	AuthSessionKey = "authSession"
)

// SessionAuthenticator resolves a cookie value to a live session
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
}

// RequireSession rejects requests without a valid admin session
func RequireSession(auth SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized. Please log in."})
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidSession) {
				log.Printf("Error authenticating session: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify session"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized. Please log in."})
			return
		}

		c.Set(AuthUserKey, session.UserID)
		c.Set(AuthSessionKey, session.ID)

		c.Next()
	}
}
