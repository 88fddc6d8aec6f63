package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/middleware"
	"yamdb/internal/http-api/service"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// RegisterRoutes registers comment routes nested under a review
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/titles/:title_id/reviews/:review_id/comments")
	{
		// Public routes
		comments.GET("", h.List)
		comments.GET("/:comment_id", h.Get)

		// Write routes
		comments.POST("", middleware.RequireAuthenticated(), h.Create)
		comments.PATCH("/:comment_id", middleware.RequireAuthenticated(), h.Update)
		comments.DELETE("/:comment_id", middleware.RequireAuthenticated(), h.Delete)
	}
}

type commentPath struct {
	titleID, reviewID, commentID int64
}

func parseCommentPath(c *gin.Context, withComment bool) (commentPath, error) {
	var p commentPath
	var err error
	if p.titleID, err = pathID(c, "title_id", "title"); err != nil {
		return p, err
	}
	if p.reviewID, err = pathID(c, "review_id", "review"); err != nil {
		return p, err
	}
	if withComment {
		if p.commentID, err = pathID(c, "comment_id", "comment"); err != nil {
			return p, err
		}
	}
	return p, nil
}

// List comments of a review
// GET /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	path, err := parseCommentPath(c, false)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := parsePagination(c)
	if err != nil {
		respondError(c, err)
		return
	}

	comments, total, err := h.commentService.List(c.Request.Context(), path.titleID, path.reviewID, p.window())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, comments, total))
}

// Get a specific comment
func (h *CommentHandler) Get(c *gin.Context) {
	path, err := parseCommentPath(c, true)
	if err != nil {
		respondError(c, err)
		return
	}
	comment, err := h.commentService.Get(c.Request.Context(), path.titleID, path.reviewID, path.commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Create creates a new comment for a review
// POST /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	path, err := parseCommentPath(c, false)
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.CreateCommentDTO
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), middleware.ActorFrom(c), path.titleID, path.reviewID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Update updates an existing comment
func (h *CommentHandler) Update(c *gin.Context) {
	path, err := parseCommentPath(c, true)
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.UpdateCommentDTO
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), middleware.ActorFrom(c), path.titleID, path.reviewID, path.commentID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete deletes a comment
func (h *CommentHandler) Delete(c *gin.Context) {
	path, err := parseCommentPath(c, true)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), middleware.ActorFrom(c), path.titleID, path.reviewID, path.commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
