package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/http-api/models"
)

type CommentRepository interface {
	List(ctx context.Context, reviewID int64, page Pagination) ([]models.Comment, int64, error)
	Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment, text string) error
	Delete(ctx context.Context, commentID int64) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// List retrieves the comments of a review, oldest first
func (r *commentRepository) List(ctx context.Context, reviewID int64, page Pagination) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	// Count total comments
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Preload("Author").
		Order("pub_date ASC, id ASC")
	if err := page.apply(query).Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// Get retrieves a comment of the given review
func (r *commentRepository) Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND review_id = ?", commentID, reviewID).
		Preload("Author").
		First(&comment).Error
	if err != nil {
		return nil, translateError(err, "comment")
	}
	return &comment, nil
}

// Create a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return translateError(err, "comment")
	}
	return translateError(db.Preload("Author").First(comment, comment.ID).Error, "comment")
}

// Update replaces the comment text
func (r *commentRepository) Update(ctx context.Context, comment *models.Comment, text string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(comment).Omit(clause.Associations).Update("text", text).Error; err != nil {
		return translateError(err, "comment")
	}
	return translateError(db.Preload("Author").First(comment, comment.ID).Error, "comment")
}

// Delete a comment
func (r *commentRepository) Delete(ctx context.Context, commentID int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, commentID)
	if res.Error != nil {
		return translateError(res.Error, "comment")
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "comment")
	}
	return nil
}
