package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/models"
)

type CategoryRepository interface {
	List(ctx context.Context, search string, page Pagination) ([]models.Category, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, slug string, changes map[string]any) (*models.Category, error)
	Delete(ctx context.Context, slug string) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// List filters by case-insensitive name substring when search is set.
func (r *categoryRepository) List(ctx context.Context, search string, page Pagination) ([]models.Category, int64, error) {
	var list []models.Category
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Category{})
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	// share the conditions between count and page queries
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := page.apply(query.Order("name asc, id asc")).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translateError(err, "category")
	}
	return &c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	return translateError(r.db.WithContext(ctx).Create(c).Error, "category")
}

// Update refuses to change the slug of a category that titles reference. The
// row lock conflicts with the key-share lock a concurrent title insert takes
// on the category, so the reference count cannot go stale before commit.
func (r *categoryRepository) Update(ctx context.Context, slug string, changes map[string]any) (*models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("slug = ?", slug).First(&c).Error; err != nil {
			return translateError(err, "category")
		}

		if newSlug, ok := changes["slug"]; ok && newSlug != c.Slug {
			var refs int64
			if err := tx.Model(&models.Title{}).Where("category_id = ?", c.ID).Count(&refs).Error; err != nil {
				return err
			}
			if refs > 0 {
				return apperror.NewValidation("slug", "cannot change the slug of a category used by titles")
			}
		}

		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&c).Updates(changes).Error; err != nil {
			return translateError(err, "category")
		}
		return tx.First(&c, c.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return apperror.NewValidation("slug", "cannot delete a category used by titles")
		}
		return translateError(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("category")
	}
	return nil
}
