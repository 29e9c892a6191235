package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID returns the authenticated user's id set by the auth
// middleware.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, ErrUserIDNotFound
	}
	idStr, ok := v.(string)
	if !ok {
		return uuid.Nil, ErrUserIDNotFound
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, ErrUserIDNotFound
	}
	return id, nil
}

// IsAdmin reports whether the auth middleware marked the caller as an
// administrator.
func IsAdmin(c *gin.Context) bool {
	admin, exists := c.Get("is_admin")
	if !exists {
		return false
	}
	b, ok := admin.(bool)
	return ok && b
}
