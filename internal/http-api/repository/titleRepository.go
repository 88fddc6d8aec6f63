package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yamdb/internal/http-api/models"
)

// ratingColumn derives the mean score on every read; NULL without reviews.
const ratingColumn = "(SELECT AVG(reviews.score)::float8 FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows List. Zero values do not filter.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         *int
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page Pagination) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// Create inserts the title and its genre rows in one transaction.
	Create(ctx context.Context, title *models.Title, genreIDs []int64) (*models.Title, error)
	// Update applies changes and, when genreIDs is non-nil, replaces the
	// genre set in the same transaction.
	Update(ctx context.Context, id int64, changes map[string]any, genreIDs []int64) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.Select("titles.*, " + ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") })
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page Pagination) ([]models.Title, int64, error) {
	var titles []models.Title
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Title{})
	if filter.CategorySlug != "" {
		query = query.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", filter.CategorySlug)
	}
	if filter.GenreSlug != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id WHERE gt.title_id = titles.id AND g.slug = ?)",
			filter.GenreSlug,
		)
	}
	if filter.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != nil {
		query = query.Where("titles.year = ?", *filter.Year)
	}

	// share the conditions between count and page queries
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := page.apply(r.withDetails(query).Order("titles.id asc")).Find(&titles).Error
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	return r.getByID(r.db.WithContext(ctx), id)
}

func (r *titleRepository) getByID(db *gorm.DB, id int64) (*models.Title, error) {
	var title models.Title
	if err := r.withDetails(db.Model(&models.Title{})).Where("titles.id = ?", id).First(&title).Error; err != nil {
		return nil, translateError(err, "title")
	}
	return &title, nil
}

func (r *titleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *titleRepository) Create(ctx context.Context, title *models.Title, genreIDs []int64) (*models.Title, error) {
	var created *models.Title
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(title).Error; err != nil {
			return translateError(err, "title")
		}
		if err := replaceGenres(tx, title.ID, genreIDs); err != nil {
			return err
		}

		var err error
		created, err = r.getByID(tx, title.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *titleRepository) Update(ctx context.Context, id int64, changes map[string]any, genreIDs []int64) (*models.Title, error) {
	var updated *models.Title
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Title
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", id).Error; err != nil {
			return translateError(err, "title")
		}

		if len(changes) > 0 {
			if err := tx.Model(&current).Omit(clause.Associations).Updates(changes).Error; err != nil {
				return translateError(err, "title")
			}
		}
		if genreIDs != nil {
			if err := replaceGenres(tx, id, genreIDs); err != nil {
				return err
			}
		}

		var err error
		updated, err = r.getByID(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// replaceGenres swaps the title's join rows for genreIDs.
func replaceGenres(tx *gorm.DB, titleID int64, genreIDs []int64) error {
	if err := tx.Where("title_id = ?", titleID).Delete(&models.TitleGenre{}).Error; err != nil {
		return err
	}
	if len(genreIDs) == 0 {
		return nil
	}

	rows := make([]models.TitleGenre, 0, len(genreIDs))
	seen := make(map[int64]bool, len(genreIDs))
	for _, gid := range genreIDs {
		if seen[gid] {
			continue
		}
		seen[gid] = true
		rows = append(rows, models.TitleGenre{TitleID: titleID, GenreID: gid})
	}
	return translateError(tx.Create(&rows).Error, "genre")
}

// Delete removes the title; its genre rows, reviews and their comments
// cascade.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if res.Error != nil {
		return translateError(res.Error, "title")
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "title")
	}
	return nil
}
