package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-calendar-api/internal/interface/http"
)

type StatsModule struct {
	Handler *handlers.StatsHandler
}

func NewStatsModule(h *handlers.StatsHandler) *StatsModule {
	return &StatsModule{Handler: h}
}

func (m *StatsModule) Name() string { return "stats" }

func (m *StatsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/stats", requireAuth(), m.Handler.Get)
}
