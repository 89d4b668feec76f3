package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

// Recovery turns panics into 500 responses and reports them, together with
// any other 5xx, to Sentry. Sentry calls are no-ops when it was never initialised.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		hub.Scope().SetTag("request_id", GetRequestID(c))

		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				hub.RecoverWithContext(c.Request.Context(), rec)
				c.Error(err)
				response.InternalError(c)
				c.Abort()
			}
		}()

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("route", c.FullPath())
				if userID := c.GetString(ContextUserID); userID != "" {
					scope.SetUser(sentry.User{ID: userID})
				}
				if len(c.Errors) > 0 {
					hub.CaptureException(c.Errors.Last().Err)
				} else {
					hub.CaptureMessage(fmt.Sprintf("%d %s %s", c.Writer.Status(), c.Request.Method, c.FullPath()))
				}
			})
		}
	}
}
