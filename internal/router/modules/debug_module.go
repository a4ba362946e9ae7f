package modules

import (
	"expvar"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-calendar-api/internal/container"
	"github.com/oksasatya/todo-calendar-api/internal/interface/middleware"
)

var (
	publishOnce sync.Once
	startedAt   = time.Now()
)

// publishVars exposes store pool stats and uptime next to the runtime vars.
// expvar names are process-global, so this runs once.
func publishVars() {
	publishOnce.Do(func() {
		expvar.Publish("uptime_seconds", expvar.Func(func() any {
			return int64(time.Since(startedAt).Seconds())
		}))
		expvar.Publish("db", expvar.Func(func() any {
			db := container.GetDB()
			if db == nil {
				return nil
			}
			return db.Stats()
		}))
	})
}

// DebugModule serves expvar at /api/debug/vars.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	publishVars()
	rl := middleware.RateLimit(container.GetRedis(), container.GetLogger(), 120, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
