package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
	"github.com/turtacn/BioTerm-Annotator/pkg/types"
)

// Recovery converts a handler panic into a logged 500 envelope instead of a
// dropped connection.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	logger = logger.Named("http")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					logging.Any("panic", r),
					logging.String("method", c.Request.Method),
					logging.String("path", c.Request.URL.Path),
					logging.String("request_id", GetRequestID(c)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.APIResponse[any]{
					Success: false,
					Error: &types.ErrorDetail{
						Code:    string(errors.ErrCodeInternal),
						Message: errors.DefaultMessageForCode(errors.ErrCodeInternal),
					},
					RequestID: GetRequestID(c),
					Timestamp: time.Now().UTC(),
				})
			}
		}()
		c.Next()
	}
}
