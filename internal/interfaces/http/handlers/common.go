// Package handlers implements the HTTP endpoint handlers for the annotation
// API.  Handlers translate between the public wire DTOs (pkg/types) and the
// application service, wrapping every response in the APIResponse envelope.
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioTerm-Annotator/internal/interfaces/http/middleware"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
	"github.com/turtacn/BioTerm-Annotator/pkg/types"
)

// writeSuccess wraps data in the response envelope.
func writeSuccess[T any](c *gin.Context, status int, data T) {
	c.JSON(status, types.APIResponse[T]{
		Success:   true,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// writeError maps an error to its HTTP status via the AppError code table.
// Client errors carry the error's own message; server errors are masked with
// the code's default message so internals never leak to callers.
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	message := errors.DefaultMessageForCode(code)
	var ae *errors.AppError
	if errors.As(err, &ae) && status < 500 {
		message = ae.Message
		if ae.Detail != "" {
			message = message + ": " + ae.Detail
		}
	}

	c.AbortWithStatusJSON(status, types.APIResponse[any]{
		Success: false,
		Error: &types.ErrorDetail{
			Code:    string(code),
			Message: message,
		},
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}
