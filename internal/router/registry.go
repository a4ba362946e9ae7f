package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Registry mounts feature modules under /api and keeps the few routes that
// live outside it (health, fallback).
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	logger      *logrus.Logger
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{Engine: engine, API: engine.Group("/api"), logger: logger}
}

// Use adds middleware applied to every /api route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	if mod == nil {
		return
	}
	r.modules = append(r.modules, mod)
}

// Root registers a GET route outside the /api prefix.
func (r *Registry) Root(path string, h gin.HandlerFunc) {
	r.Engine.GET(path, h)
}

func (r *Registry) NotFound(h gin.HandlerFunc) {
	r.Engine.NoRoute(h)
}

// RegisterAll applies the /api middlewares and mounts each module once.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
		r.logger.WithField("module", m.Name()).Debug("module registered")
	}
}
