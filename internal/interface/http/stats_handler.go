package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-calendar-api/internal/application"
	"github.com/oksasatya/todo-calendar-api/pkg/response"
)

type StatsHandler struct {
	Svc *application.StatsService
	now func() time.Time
}

func NewStatsHandler(svc *application.StatsService) *StatsHandler {
	return &StatsHandler{Svc: svc, now: time.Now}
}

// Get reports statistics with days counted in the tz query zone, UTC by default.
func (h *StatsHandler) Get(c *gin.Context) {
	loc := time.UTC
	if tz := c.Query("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid time zone", map[string]string{"tz": "must be a valid IANA time zone"})
			return
		}
		loc = l
	}
	st, err := h.Svc.Get(c.Request.Context(), ownerID(c), h.now(), loc)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st)
}
