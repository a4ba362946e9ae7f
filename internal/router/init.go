package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-calendar-api/internal/application"
	"github.com/oksasatya/todo-calendar-api/internal/container"
	"github.com/oksasatya/todo-calendar-api/internal/infrastructure/sqlite"
	handlers "github.com/oksasatya/todo-calendar-api/internal/interface/http"
	"github.com/oksasatya/todo-calendar-api/internal/router/modules"
	"github.com/oksasatya/todo-calendar-api/pkg/response"
)

type moduleDeps struct {
	Auth       *handlers.AuthHandler
	Categories *handlers.CategoryHandler
	Todos      *handlers.TodoHandler
	Stats      *handlers.StatsHandler
	Health     *handlers.HealthHandler
}

func buildDeps() moduleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	store := sqlite.NewStore(container.GetDB())

	authSvc := application.NewAuthService(store, container.GetTokens(), container.GetRevocations(), cfg.BcryptCost, logger)

	return moduleDeps{
		Auth:       handlers.NewAuthHandler(authSvc, logger),
		Categories: handlers.NewCategoryHandler(application.NewCategoryService(store)),
		Todos:      handlers.NewTodoHandler(application.NewTodoService(store)),
		Stats:      handlers.NewStatsHandler(application.NewStatsService(store)),
		Health:     handlers.NewHealthHandler(container.GetDB(), logger),
	}
}

// InitModules builds handlers from the container and adds every module to r.
// Call once before RegisterAll.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	deps := buildDeps()

	r.Root("/health", deps.Health.Health)
	r.NotFound(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found", "path": c.Request.URL.Path})
			return
		}
		response.Error(c, http.StatusNotFound, "Not found", nil)
	})

	r.Add(modules.NewAuthModule(deps.Auth, cfg.AuthRateLimit, !cfg.IsProduction()))
	r.Add(modules.NewCategoryModule(deps.Categories))
	r.Add(modules.NewTodoModule(deps.Todos))
	r.Add(modules.NewStatsModule(deps.Stats))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
