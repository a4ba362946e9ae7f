package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type pingModule struct{ calls int }

func (m *pingModule) Name() string { return "ping" }

func (m *pingModule) Register(rg *gin.RouterGroup) {
	m.calls++
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
}

func TestRegistryMountsModulesUnderAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	reg := NewRegistry(engine, quietLogger())
	mod := &pingModule{}
	reg.Use(func(c *gin.Context) { c.Set("mw", "applied") })
	reg.Add(mod)
	reg.Add(nil)
	reg.Root("/live", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	reg.NotFound(func(c *gin.Context) { c.Status(http.StatusTeapot) })
	reg.RegisterAll()

	assert.Equal(t, 1, mod.calls)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
