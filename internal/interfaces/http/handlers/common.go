// Package handlers contains the gin HTTP handlers for the maintenance API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// errorResponse is the uniform error envelope for all API errors.
type errorResponse struct {
	Error common.ErrorDetail `json:"error"`
}

// respondError maps an error to its HTTP status via the error-code table
// and writes the uniform envelope.  Unclassified errors become opaque 500s
// so internals never leak to clients.
func respondError(c *gin.Context, log logging.Logger, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	detail := common.ErrorDetail{
		Code:    code.String(),
		Message: errors.DefaultMessageForCode(code),
	}
	if appErr, ok := err.(*errors.AppError); ok && errors.IsClientError(code) {
		detail.Message = appErr.Message
		detail.Detail = appErr.Detail
	}

	if errors.IsServerError(code) {
		log.Error("request failed",
			logging.String("path", c.FullPath()),
			logging.String("code", code.String()),
			logging.Err(err),
		)
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: detail})
}

// respondJSON writes a success payload.
func respondJSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// pathID extracts a non-empty path parameter or fails with a 400.
func pathID(c *gin.Context, log logging.Logger, name string) (common.ID, bool) {
	raw := c.Param(name)
	if raw == "" {
		respondError(c, log, errors.InvalidParam(name+" is required"))
		return "", false
	}
	return common.ID(raw), true
}

// NoRoute returns the 404 envelope for unknown paths.
func NoRoute(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondError(c, log, errors.NotFound("route not found"))
	}
}
