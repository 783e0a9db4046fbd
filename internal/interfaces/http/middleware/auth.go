// Package middleware contains the gin middleware chain for the API.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/auth/identity"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// Context keys set by Auth.
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyUser   = "auth_user"
)

// Auth verifies the Authorization bearer token on every request and stores
// the resolved user in the gin context.
func Auth(verifier identity.Verifier, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		user, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.IsUnauthorized(err) {
				abortUnauthorized(c, "invalid or expired token")
				return
			}
			log.Error("token verification failed", logging.Err(err))
			c.AbortWithStatusJSON(errors.HTTPStatusForCode(errors.ErrCodeExternalService), gin.H{
				"error": common.ErrorDetail{
					Code:    errors.ErrCodeExternalService.String(),
					Message: errors.DefaultMessageForCode(errors.ErrCodeExternalService),
				},
			})
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// UserID returns the authenticated user's ID from the gin context.
func UserID(c *gin.Context) common.UserID {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(common.UserID); ok {
			return id
		}
	}
	return ""
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(errors.ErrCodeUnauthorized), gin.H{
		"error": common.ErrorDetail{
			Code:    errors.ErrCodeUnauthorized.String(),
			Message: msg,
		},
	})
}
