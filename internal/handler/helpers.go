package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/memento-app/memento-auth/internal/pkg/errors"
	"github.com/memento-app/memento-auth/internal/pkg/response"
)

// handleError maps service errors to the contractual status/detail pairs.
// The detail strings are consumed literally by existing clients.
func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case appErr.IsConflict(err):
		response.Error(c, http.StatusBadRequest, "User already exists")
	case err == appErr.ErrUnauthorized:
		response.Error(c, http.StatusUnauthorized, "Invalid credentials")
	case appErr.IsNotFound(err):
		response.Error(c, http.StatusNotFound, "Profile not found")
	default:
		requestID, _ := c.Get("request_id")
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.Any("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "internal error")
	}
}
