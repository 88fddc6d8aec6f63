package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/models"
)

type GenreRepository interface {
	List(ctx context.Context, search string, page Pagination) ([]models.Genre, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Genre, error)
	// GetBySlugs resolves every slug or fails naming the first unknown one.
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Create(ctx context.Context, g *models.Genre) error
	Update(ctx context.Context, slug string, changes map[string]any) (*models.Genre, error)
	Delete(ctx context.Context, slug string) error
}

type GenreRepo struct {
	db *gorm.DB
}

func NewGenreRepo(db *gorm.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

func (r *GenreRepo) List(ctx context.Context, search string, page Pagination) ([]models.Genre, int64, error) {
	var list []models.Genre
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Genre{})
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	// share the conditions between count and page queries
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}
	if err := page.apply(query.Order("name asc, id asc")).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get genres: %w", err)
	}
	return list, total, nil
}

func (r *GenreRepo) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, translateError(err, "genre")
	}
	return &g, nil
}

func (r *GenreRepo) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return []models.Genre{}, nil
	}

	var list []models.Genre
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres by slug: %w", err)
	}

	found := make(map[string]bool, len(list))
	for _, g := range list {
		found[g.Slug] = true
	}
	for _, s := range slugs {
		if !found[s] {
			return nil, apperror.NewValidation("genre", fmt.Sprintf("genre %q does not exist", s))
		}
	}
	return list, nil
}

func (r *GenreRepo) Create(ctx context.Context, g *models.Genre) error {
	return translateError(r.db.WithContext(ctx).Create(g).Error, "genre")
}

// Update follows the same slug rule as categories, counting join rows.
func (r *GenreRepo) Update(ctx context.Context, slug string, changes map[string]any) (*models.Genre, error) {
	var g models.Genre
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("slug = ?", slug).First(&g).Error; err != nil {
			return translateError(err, "genre")
		}

		if newSlug, ok := changes["slug"]; ok && newSlug != g.Slug {
			var refs int64
			if err := tx.Model(&models.TitleGenre{}).Where("genre_id = ?", g.ID).Count(&refs).Error; err != nil {
				return err
			}
			if refs > 0 {
				return apperror.NewValidation("slug", "cannot change the slug of a genre used by titles")
			}
		}

		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&g).Updates(changes).Error; err != nil {
			return translateError(err, "genre")
		}
		return tx.First(&g, g.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GenreRepo) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Genre{})
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return apperror.NewValidation("slug", "cannot delete a genre used by titles")
		}
		return translateError(res.Error, "genre")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("genre")
	}
	return nil
}
