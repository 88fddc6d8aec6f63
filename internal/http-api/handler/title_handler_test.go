package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/policy"
	"yamdb/internal/http-api/repository"
)

func sampleTitles(n int) []dto.TitleResponse {
	out := make([]dto.TitleResponse, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, dto.TitleResponse{
			ID:       int64(i),
			Name:     "Title",
			Year:     1999,
			Genre:    []dto.ClassifierResponse{},
			Category: dto.ClassifierResponse{Name: "Film", Slug: "film"},
		})
	}
	return out
}

func TestListTitles_Envelope(t *testing.T) {
	titleService := new(MockTitleService)
	router := setupRouter(t, Services{Titles: titleService})

	titleService.On("List", mock.Anything, dto.TitleFilter{Category: "film"}, repository.Pagination{Limit: 2, Offset: 2}).
		Return(sampleTitles(2), int64(5), nil)

	w := doRequest(router, http.MethodGet, "/api/v1/titles?category=film&page=2&page_size=2", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 5, body["count"])
	assert.Equal(t, "http://example.com/api/v1/titles?category=film&page=3&page_size=2", body["next"])
	assert.Equal(t, "http://example.com/api/v1/titles?category=film&page_size=2", body["previous"])
	assert.Len(t, body["results"], 2)
	titleService.AssertExpectations(t)
}

func TestListTitles_EmptyResults(t *testing.T) {
	titleService := new(MockTitleService)
	router := setupRouter(t, Services{Titles: titleService})

	titleService.On("List", mock.Anything, dto.TitleFilter{}, repository.Pagination{Limit: 10, Offset: 0}).
		Return([]dto.TitleResponse{}, int64(0), nil)

	w := doRequest(router, http.MethodGet, "/api/v1/titles", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, w.Body.String())
}

func TestListTitles_BadQuery(t *testing.T) {
	router := setupRouter(t, Services{Titles: new(MockTitleService)})

	w := doRequest(router, http.MethodGet, "/api/v1/titles?year=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/titles?page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTitle(t *testing.T) {
	titleService := new(MockTitleService)
	router := setupRouter(t, Services{Titles: titleService})

	title := sampleTitles(1)[0]
	titleService.On("Get", mock.Anything, int64(1)).Return(&title, nil)
	titleService.On("Get", mock.Anything, int64(99)).Return(nil, apperror.NotFound("title"))

	w := doRequest(router, http.MethodGet, "/api/v1/titles/1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/titles/99", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "title not found", decodeBody(t, w)["error"])

	// non-numeric ids never reach the service
	w = doRequest(router, http.MethodGet, "/api/v1/titles/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	titleService.AssertNumberOfCalls(t, "Get", 2)
}

func TestCreateTitle(t *testing.T) {
	valid := jsonBody{"name": "Dune", "year": 1965, "genre": []string{"sci-fi"}, "category": "book"}

	t.Run("admin creates", func(t *testing.T) {
		titleService := new(MockTitleService)
		router := setupRouter(t, Services{Titles: titleService})

		created := sampleTitles(1)[0]
		titleService.On("Create", mock.Anything, mock.MatchedBy(func(a policy.Actor) bool { return a.IsAdmin() }),
			mock.MatchedBy(func(req *dto.CreateTitleRequest) bool {
				return req.Name == "Dune" && *req.Year == 1965 && req.Category == "book"
			})).Return(&created, nil)

		w := doRequest(router, http.MethodPost, "/api/v1/titles", "admin", valid)
		assert.Equal(t, http.StatusCreated, w.Code)
		titleService.AssertExpectations(t)
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		titleService := new(MockTitleService)
		router := setupRouter(t, Services{Titles: titleService})

		// authentication is checked before the body
		w := doRequest(router, http.MethodPost, "/api/v1/titles", "", jsonBody{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		titleService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("moderator is forbidden", func(t *testing.T) {
		router := setupRouter(t, Services{Titles: new(MockTitleService)})
		w := doRequest(router, http.MethodPost, "/api/v1/titles", "moderator", valid)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		router := setupRouter(t, Services{Titles: new(MockTitleService)})
		w := doRequest(router, http.MethodPost, "/api/v1/titles", "forged", valid)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		router := setupRouter(t, Services{Titles: new(MockTitleService)})
		w := doRequest(router, http.MethodPost, "/api/v1/titles", "admin", jsonBody{"name": "Dune", "genre": []string{"not a slug"}})
		require.Equal(t, http.StatusBadRequest, w.Code)

		fields := decodeBody(t, w)["fields"].(map[string]any)
		assert.Contains(t, fields, "year")
		assert.Contains(t, fields, "category")
		assert.Contains(t, fields, "genre[0]")
	})
}

func TestDeleteTitle(t *testing.T) {
	titleService := new(MockTitleService)
	router := setupRouter(t, Services{Titles: titleService})

	titleService.On("Delete", mock.Anything, mock.Anything, int64(4)).Return(nil)

	w := doRequest(router, http.MethodDelete, "/api/v1/titles/4", "admin", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
