package dto

import "yamdb/internal/http-api/models"

// CreateClassifierRequest creates a category or a genre
type CreateClassifierRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

// UpdateClassifierRequest partially updates a category or a genre
type UpdateClassifierRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=256"`
	Slug *string `json:"slug" binding:"omitempty,max=50,slug"`
}

// ClassifierResponse is the public shape of categories and genres
type ClassifierResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromModelToCategoryResponse(c *models.Category) ClassifierResponse {
	return ClassifierResponse{Name: c.Name, Slug: c.Slug}
}

func FromModelToGenreResponse(g *models.Genre) ClassifierResponse {
	return ClassifierResponse{Name: g.Name, Slug: g.Slug}
}
