package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-calendar-api/internal/application"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	"github.com/oksasatya/todo-calendar-api/pkg/response"
)

type TodoHandler struct {
	Svc *application.TodoService
	now func() time.Time
}

func NewTodoHandler(svc *application.TodoService) *TodoHandler {
	return &TodoHandler{Svc: svc, now: time.Now}
}

type updateTodoRequest struct {
	Text       *string               `json:"text" binding:"omitempty,max=1000"`
	Completed  *bool                 `json:"completed"`
	Date       *string               `json:"date" binding:"omitempty,max=64"`
	CategoryID entity.OptionalString `json:"categoryId"`
}

func (h *TodoHandler) List(c *gin.Context) {
	f := entity.TodoFilter{
		From:       c.Query("from"),
		To:         c.Query("to"),
		CategoryID: c.Query("categoryId"),
	}
	if v := c.Query("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "completed must be true or false", nil)
			return
		}
		f.Completed = &b
	}
	todos, err := h.Svc.List(c.Request.Context(), ownerID(c), f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, todos)
}

func (h *TodoHandler) Create(c *gin.Context) {
	var req entity.Todo
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	id, err := h.Svc.Create(c.Request.Context(), ownerID(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"success": true, "id": id})
}

// bindTodos reads a JSON array of todos; anything else is rejected.
func bindTodos(c *gin.Context) ([]entity.Todo, bool) {
	var todos []entity.Todo
	if err := c.ShouldBindJSON(&todos); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field == "" {
			response.Error(c, http.StatusBadRequest, "Expected array of todos", nil)
			return nil, false
		}
		invalidPayload(c, err)
		return nil, false
	}
	if todos == nil {
		response.Error(c, http.StatusBadRequest, "Expected array of todos", nil)
		return nil, false
	}
	return todos, true
}

func (h *TodoHandler) BulkCreate(c *gin.Context) {
	todos, ok := bindTodos(c)
	if !ok {
		return
	}
	n, err := h.Svc.BulkCreate(c.Request.Context(), ownerID(c), todos)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"success": true, "count": n})
}

func (h *TodoHandler) Update(c *gin.Context) {
	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	patch := entity.TodoPatch{
		Text:       req.Text,
		Completed:  req.Completed,
		Date:       req.Date,
		CategoryID: req.CategoryID,
	}
	if err := h.Svc.Update(c.Request.Context(), ownerID(c), c.Param("id"), patch); err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true})
}

func (h *TodoHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true})
}

func (h *TodoHandler) DeleteAll(c *gin.Context) {
	n, err := h.Svc.DeleteAll(c.Request.Context(), ownerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true, "deletedCount": n})
}

// Export sends every todo as a downloadable JSON file.
func (h *TodoHandler) Export(c *gin.Context) {
	todos, err := h.Svc.Export(c.Request.Context(), ownerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	name := "todo-backup-" + h.now().UTC().Format("2006-01-02") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	response.JSON(c, http.StatusOK, todos)
}

// Import replaces all of the caller's todos with the uploaded array.
func (h *TodoHandler) Import(c *gin.Context) {
	todos, ok := bindTodos(c)
	if !ok {
		return
	}
	res, err := h.Svc.Import(c.Request.Context(), ownerID(c), todos)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"success": true, "count": res.Count, "deletedCount": res.DeletedCount})
}
