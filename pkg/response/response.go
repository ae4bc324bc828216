package response

import (
	"net/http"

	"reelmate/pkg/apperror"
	"reelmate/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDKey       = "user_id"
	sessionTokenKey = "session_token"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OptionalUserID returns the caller's ID when the request carried a valid token.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// SessionToken returns the session bound to the request's access token.
func SessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code >= http.StatusInternalServerError {
		logger.Get().WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
