package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/service"
)

type TitleHandler struct {
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService) *TitleHandler {
	return &TitleHandler{titleService: titleService}
}

func (h *TitleHandler) RegisterRoutes(router *gin.RouterGroup) {
	titles := router.Group("/titles")
	{
		titles.GET("", h.List)
		titles.GET("/:title_id", h.Get)

		admin := titles.Group("", middleware.RequireAdmin())
		admin.POST("", h.Create)
		admin.PATCH("/:title_id", h.Update)
		admin.DELETE("/:title_id", h.Delete)
	}
}

// List titles
// GET /api/v1/titles?category=&genre=&name=&year=
func (h *TitleHandler) List(c *gin.Context) {
	var filter dto.TitleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": dto.BindingErrors(err)})
		return
	}
	p, err := parsePagination(c)
	if err != nil {
		respondError(c, err)
		return
	}

	titles, total, err := h.titleService.List(c.Request.Context(), filter, p.window())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, titles, total))
}

// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, err := pathID(c, "title_id", "title")
	if err != nil {
		respondError(c, err)
		return
	}
	title, err := h.titleService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleRequest
	if !bindJSON(c, &req) {
		return
	}
	title, err := h.titleService.Create(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	id, err := pathID(c, "title_id", "title")
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.UpdateTitleRequest
	if !bindJSON(c, &req) {
		return
	}
	title, err := h.titleService.Update(c.Request.Context(), middleware.ActorFrom(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "title_id", "title")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.titleService.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
