package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-calendar-api/pkg/response"
)

// Recovery turns a panic into a 500. Outside production the body carries the
// panic value and stack.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			stack := string(debug.Stack())
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(CtxRequestIDKey),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"panic":      fmt.Sprint(rec),
				"stack":      stack,
			}).Error("panic recovered")

			body := response.ErrorBody{
				Error:     "internal server error",
				RequestID: c.GetString(CtxRequestIDKey),
			}
			if response.ShowDetails() {
				body.Detail = fmt.Sprint(rec)
				body.Stack = stack
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}
