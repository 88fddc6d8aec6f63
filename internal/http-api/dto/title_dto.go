package dto

import "yamdb/internal/http-api/models"

// CreateTitleRequest references its category and genres by slug
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        *int     `json:"year" binding:"required"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" binding:"dive,slug"`
	Category    string   `json:"category" binding:"required,slug"`
}

// UpdateTitleRequest holds a partial update. A non-nil Genre replaces the
// whole genre set.
type UpdateTitleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre" binding:"omitempty,dive,slug"`
	Category    *string   `json:"category" binding:"omitempty,slug"`
}

// TitleFilter narrows title listings
type TitleFilter struct {
	Category string `form:"category"`
	Genre    string `form:"genre"`
	Name     string `form:"name"`
	Year     *int   `form:"year"`
}

type TitleResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Year        int                  `json:"year"`
	Rating      *float64             `json:"rating"`
	Description string               `json:"description"`
	Genre       []ClassifierResponse `json:"genre"`
	Category    ClassifierResponse   `json:"category"`
}

func FromModelToTitleResponse(t *models.Title) TitleResponse {
	genres := make([]ClassifierResponse, 0, len(t.Genres))
	for i := range t.Genres {
		genres = append(genres, FromModelToGenreResponse(&t.Genres[i]))
	}

	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
		Category:    FromModelToCategoryResponse(&t.Category),
	}
}
