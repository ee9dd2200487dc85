package middlewares

import (
	"net/http"

	"wbhub/internal/app/pkg/ginx"
	"wbhub/internal/app/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler recovers panics and converts accumulated gin errors into the
// uniform response envelope.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "panic recovered: %v", r)
				ginx.Error(c, http.StatusInternalServerError, "internal error")
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			log.Errorf(c.Request.Context(), "unhandled request error: %v", err)
			ginx.InternalError(c, err.Error())
		}
	}
}
