package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/crudbase/internal/notification"
)

// Recovery returns a gin middleware that recovers from panics, logs the error
// with stack trace using slog, and returns a 500 response whose body is a
// notification list, matching the error shape of every other failure path:
//
//	[{"message": "internal server error", "type": "error", ...}]
//
// This middleware replaces gin.Recovery() so panics surface in the same
// notice protocol clients already parse.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()

				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(stack)),
				)

				c.Abort()

				// The panic value is not echoed back to the client; the
				// request ID is, so the client can quote it when reporting.
				nm := notification.NewManager()
				if id := GetRequestID(c); id != "" {
					nm.Add(notification.NewDetailed("internal server error", notification.Error, "request id "+id))
				} else {
					nm.AddTyped("internal server error", notification.Error)
				}
				c.JSON(http.StatusInternalServerError, nm.List())
			}
		}()
		c.Next()
	}
}
