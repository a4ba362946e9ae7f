package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-calendar-api/internal/interface/http"
)

type TodoModule struct {
	Handler *handlers.TodoHandler
}

func NewTodoModule(h *handlers.TodoHandler) *TodoModule {
	return &TodoModule{Handler: h}
}

func (m *TodoModule) Name() string { return "todos" }

func (m *TodoModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/todos")
	g.Use(requireAuth())
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.DELETE("", m.Handler.DeleteAll)
		g.POST("/bulk", m.Handler.BulkCreate)
		g.GET("/export", m.Handler.Export)
		g.POST("/import", m.Handler.Import)
		g.PUT("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
