package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-calendar-api/internal/interface/http"
)

type CategoryModule struct {
	Handler *handlers.CategoryHandler
}

func NewCategoryModule(h *handlers.CategoryHandler) *CategoryModule {
	return &CategoryModule{Handler: h}
}

func (m *CategoryModule) Name() string { return "categories" }

func (m *CategoryModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/categories")
	g.Use(requireAuth())
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.PUT("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
