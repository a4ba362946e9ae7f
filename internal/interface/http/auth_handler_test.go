package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/todo-calendar-api/internal/interface/middleware"
)

func TestOwnerIDReadsRequestIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	assert.Empty(t, ownerID(c))

	// A bare gin key is not enough; only Auth attaches the identity.
	c.Set(middleware.CtxUserIDKey, "spoofed")
	assert.Empty(t, ownerID(c))

	c.Request = c.Request.WithContext(middleware.WithIdentity(c.Request.Context(), middleware.Identity{UserID: "u1", Email: "a@x.com"}))
	assert.Equal(t, "u1", ownerID(c))
}
