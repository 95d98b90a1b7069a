package handlers

import (
	"net/http"

	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: middlewares.RequestIDFrom(ctx),
			Details:   details,
		},
	})
}

// RespondValidation writes the flat list of rejected-input messages.
func RespondValidation(ctx *gin.Context, messages []string) {
	if messages == nil {
		messages = []string{}
	}

	ctx.JSON(http.StatusBadRequest, gin.H{"errors": messages})
}

func RespondUnauthorized(ctx *gin.Context) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", "Access Denied", nil)
}

// 403 carries no body
func RespondForbidden(ctx *gin.Context) {
	ctx.Status(http.StatusForbidden)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}
