package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-calendar-api/internal/container"
	handlers "github.com/oksasatya/todo-calendar-api/internal/interface/http"
	"github.com/oksasatya/todo-calendar-api/internal/interface/middleware"
)

// AuthModule serves /auth. Register and login are public and rate limited
// per IP; me and logout need a bearer token.
type AuthModule struct {
	Handler      *handlers.AuthHandler
	RateLimit    int
	AllowPrivate bool
}

func NewAuthModule(h *handlers.AuthHandler, rateLimit int, allowPrivate bool) *AuthModule {
	return &AuthModule{Handler: h, RateLimit: rateLimit, AllowPrivate: allowPrivate}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	var allow middleware.AllowFunc
	if m.AllowPrivate {
		allow = middleware.AllowPrivateIP()
	}
	limiter := middleware.RateLimit(container.GetRedis(), container.GetLogger(), m.RateLimit, time.Minute, middleware.KeyByIPAndPath(), allow)

	g := rg.Group("/auth")
	g.POST("/register", limiter, m.Handler.Register)
	g.POST("/login", limiter, m.Handler.Login)

	auth := g.Group("")
	auth.Use(requireAuth())
	{
		auth.GET("/me", m.Handler.Me)
		auth.POST("/logout", m.Handler.Logout)
	}
}

func requireAuth() gin.HandlerFunc {
	return middleware.Auth(container.GetTokens(), container.GetRevocations())
}
