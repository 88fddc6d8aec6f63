package service

import (
	"context"
	"fmt"
	"time"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
)

// MinTitleYear is the earliest year a title may carry.
const MinTitleYear = -3400

type TitleService interface {
	List(ctx context.Context, filter dto.TitleFilter, page repository.Pagination) ([]dto.TitleResponse, int64, error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateTitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateTitleRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	now          func() time.Time
}

func NewTitleService(titleRepo repository.TitleRepository, categoryRepo repository.CategoryRepository, genreRepo repository.GenreRepository) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		now:          time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter dto.TitleFilter, page repository.Pagination) ([]dto.TitleResponse, int64, error) {
	titles, total, err := s.titleRepo.List(ctx, repository.TitleFilter{
		CategorySlug: filter.Category,
		GenreSlug:    filter.Genre,
		Name:         filter.Name,
		Year:         filter.Year,
	}, page)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(titles, dto.FromModelToTitleResponse), total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToTitleResponse(title)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}
	if err := s.validateYear(*req.Year); err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	genreIDs, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	title, err := s.titleRepo.Create(ctx, &models.Title{
		Name:        req.Name,
		Year:        *req.Year,
		Description: req.Description,
		CategoryID:  categoryID,
	}, genreIDs)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToTitleResponse(title)
	return &resp, nil
}

func (s *titleService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	if err := policy.CanAdminister(actor); err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Year != nil {
		if err := s.validateYear(*req.Year); err != nil {
			return nil, err
		}
		changes["year"] = *req.Year
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		changes["category_id"] = categoryID
	}

	var genreIDs []int64
	if req.Genre != nil {
		ids, err := s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
		genreIDs = ids
	}

	title, err := s.titleRepo.Update(ctx, id, changes, genreIDs)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToTitleResponse(title)
	return &resp, nil
}

func (s *titleService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if err := policy.CanAdminister(actor); err != nil {
		return err
	}
	return s.titleRepo.Delete(ctx, id)
}

func (s *titleService) validateYear(year int) error {
	current := s.now().Year()
	if year > current {
		return apperror.NewValidation("year", fmt.Sprintf("cannot be later than %d", current))
	}
	if year < MinTitleYear {
		return apperror.NewValidation("year", fmt.Sprintf("cannot be earlier than %d", MinTitleYear))
	}
	return nil
}

func (s *titleService) resolveCategory(ctx context.Context, slug string) (int64, error) {
	c, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return 0, apperror.NewValidation("category", fmt.Sprintf("category %q does not exist", slug))
		}
		return 0, err
	}
	return c.ID, nil
}

// resolveGenres returns a non-nil slice so an empty list clears the genres.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]int64, error) {
	genres, err := s.genreRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids, nil
}
