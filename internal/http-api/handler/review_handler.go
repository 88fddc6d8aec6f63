package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/service"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes registers review routes nested under a title
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/titles/:title_id/reviews")
	{
		// Public routes
		reviews.GET("", h.List)
		reviews.GET("/:review_id", h.Get)

		// Write routes
		reviews.POST("", middleware.RequireAuthenticated(), h.Create)
		reviews.PATCH("/:review_id", middleware.RequireAuthenticated(), h.Update)
		reviews.DELETE("/:review_id", middleware.RequireAuthenticated(), h.Delete)
	}
}

func reviewPath(c *gin.Context) (titleID, reviewID int64, err error) {
	if titleID, err = pathID(c, "title_id", "title"); err != nil {
		return 0, 0, err
	}
	if c.Param("review_id") == "" {
		return titleID, 0, nil
	}
	reviewID, err = pathID(c, "review_id", "review")
	return titleID, reviewID, err
}

// GET /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, _, err := reviewPath(c)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := parsePagination(c)
	if err != nil {
		respondError(c, err)
		return
	}

	reviews, total, err := h.reviewService.List(c.Request.Context(), titleID, p.window())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, reviews, total))
}

// GET /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		respondError(c, err)
		return
	}
	review, err := h.reviewService.Get(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// POST /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, _, err := reviewPath(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.CreateReviewDTO
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Create(c.Request.Context(), middleware.ActorFrom(c), titleID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// PATCH /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.UpdateReviewDTO
	if !bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Update(c.Request.Context(), middleware.ActorFrom(c), titleID, reviewID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, reviewID, err := reviewPath(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), middleware.ActorFrom(c), titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
