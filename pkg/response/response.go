package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-calendar-api/internal/domain/apperror"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error     string            `json:"error"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Detail    string            `json:"detail,omitempty"`
	Stack     string            `json:"stack,omitempty"`
}

var (
	logger     = logrus.StandardLogger()
	production = true
)

// Configure sets the logger for internal failures and whether causes may be
// shown to clients. Call once at startup.
func Configure(l *logrus.Logger, isProduction bool) {
	if l != nil {
		logger = l
	}
	production = isProduction
}

// ShowDetails reports whether internal causes are included in responses.
func ShowDetails() bool { return !production }

func JSON(c *gin.Context, status int, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, data)
}

func Error(c *gin.Context, status int, message string, details map[string]string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorBody{
		Error:     message,
		Details:   details,
		RequestID: c.GetString("request_id"),
	})
}

// FromError maps err onto its status code and writes the error body.
// Internal failures are logged with the request context.
func FromError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	body := ErrorBody{
		Error:     apperror.MessageOf(err),
		RequestID: c.GetString("request_id"),
	}
	if kind == apperror.KindInternal {
		logger.WithFields(logrus.Fields{
			"request_id": body.RequestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_id":    c.GetString("userID"),
			"error":      err.Error(),
		}).Error("request failed")
		if !production {
			body.Detail = err.Error()
		}
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), body)
}
