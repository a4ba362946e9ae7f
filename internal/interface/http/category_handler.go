package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-calendar-api/internal/application"
	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	"github.com/oksasatya/todo-calendar-api/pkg/response"
)

type CategoryHandler struct {
	Svc *application.CategoryService
}

func NewCategoryHandler(svc *application.CategoryService) *CategoryHandler {
	return &CategoryHandler{Svc: svc}
}

type createCategoryRequest struct {
	ID    string `json:"id" binding:"max=128"`
	Name  string `json:"name" binding:"max=100"`
	Icon  string `json:"icon" binding:"max=64"`
	Color string `json:"color" binding:"max=32"`
}

type updateCategoryRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=100"`
	Icon  *string `json:"icon" binding:"omitempty,max=64"`
	Color *string `json:"color" binding:"omitempty,max=32"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.Svc.List(c.Request.Context(), ownerID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cats)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	id, err := h.Svc.Create(c.Request.Context(), ownerID(c), entity.Category{
		ID:    req.ID,
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"success": true, "id": id})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	patch := entity.CategoryPatch{Name: req.Name, Icon: req.Icon, Color: req.Color}
	if err := h.Svc.Update(c.Request.Context(), ownerID(c), c.Param("id"), patch); err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true})
}
