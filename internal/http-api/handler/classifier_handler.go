package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/http-api/service"
)

// classifierService is the method set shared by categories and genres.
type classifierService interface {
	List(ctx context.Context, search string, page repository.Pagination) ([]dto.ClassifierResponse, int64, error)
	Get(ctx context.Context, slug string) (*dto.ClassifierResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateClassifierRequest) (*dto.ClassifierResponse, error)
	Update(ctx context.Context, actor policy.Actor, slug string, req *dto.UpdateClassifierRequest) (*dto.ClassifierResponse, error)
	Delete(ctx context.Context, actor policy.Actor, slug string) error
}

var (
	_ classifierService = (service.CategoryService)(nil)
	_ classifierService = (service.GenreService)(nil)
)

// ClassifierHandler serves /categories and /genres
type ClassifierHandler struct {
	path string
	svc  classifierService
}

func NewCategoryHandler(svc service.CategoryService) *ClassifierHandler {
	return &ClassifierHandler{path: "/categories", svc: svc}
}

func NewGenreHandler(svc service.GenreService) *ClassifierHandler {
	return &ClassifierHandler{path: "/genres", svc: svc}
}

func (h *ClassifierHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group(h.path)
	{
		// Public routes
		group.GET("", h.List)
		group.GET("/:slug", h.Get)

		// Admin routes
		admin := group.Group("", middleware.RequireAdmin())
		admin.POST("", h.Create)
		admin.PATCH("/:slug", h.Update)
		admin.DELETE("/:slug", h.Delete)
	}
}

// List supports ?search= on name
func (h *ClassifierHandler) List(c *gin.Context) {
	p, err := parsePagination(c)
	if err != nil {
		respondError(c, err)
		return
	}

	list, total, err := h.svc.List(c.Request.Context(), c.Query("search"), p.window())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, list, total))
}

func (h *ClassifierHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClassifierHandler) Create(c *gin.Context) {
	var req dto.CreateClassifierRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ClassifierHandler) Update(c *gin.Context) {
	var req dto.UpdateClassifierRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("slug"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClassifierHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
