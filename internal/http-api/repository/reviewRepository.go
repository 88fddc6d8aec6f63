package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/http-api/models"
)

type ReviewRepository interface {
	List(ctx context.Context, titleID int64, page Pagination) ([]models.Review, int64, error)
	// Get only finds the review under the given title.
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review, changes map[string]any) error
	Delete(ctx context.Context, reviewID int64) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) List(ctx context.Context, titleID int64, page Pagination) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	// Count total reviews
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date ASC, id ASC")
	if err := page.apply(query).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, translateError(err, "review")
	}
	return &review, nil
}

// Create inserts the review and loads its author for the response.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(review).Error; err != nil {
		return translateError(err, "review")
	}
	return translateError(db.Preload("Author").First(review, review.ID).Error, "review")
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Model(review).Omit(clause.Associations).Updates(changes).Error; err != nil {
		return translateError(err, "review")
	}
	return translateError(db.Preload("Author").First(review, review.ID).Error, "review")
}

// Delete removes the review and, by cascade, its comments.
func (r *reviewRepository) Delete(ctx context.Context, reviewID int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, reviewID)
	if res.Error != nil {
		return translateError(res.Error, "review")
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "review")
	}
	return nil
}
