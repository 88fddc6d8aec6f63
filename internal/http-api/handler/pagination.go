package handler

import (
	"math"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// pageRequest is either limit/offset or page/page_size, depending on which
// parameters the client sent. Page numbering is the default.
type pageRequest struct {
	byOffset bool
	page     int
	size     int
	offset   int
}

func (p pageRequest) window() repository.Pagination {
	if p.byOffset {
		return repository.Pagination{Limit: p.size, Offset: p.offset}
	}
	return repository.Pagination{Limit: p.size, Offset: (p.page - 1) * p.size}
}

func parsePagination(c *gin.Context) (pageRequest, error) {
	ve := &apperror.ValidationError{}
	intParam := func(name string, def, min int) int {
		raw, ok := c.GetQuery(name)
		if !ok || raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < min {
			ve.Add(name, "must be an integer >= "+strconv.Itoa(min))
			return def
		}
		return v
	}

	var p pageRequest
	if _, ok := c.GetQuery("limit"); ok {
		p.byOffset = true
		p.size = intParam("limit", defaultPageSize, 1)
		p.offset = intParam("offset", 0, 0)
	} else if _, ok := c.GetQuery("offset"); ok {
		p.byOffset = true
		p.size = defaultPageSize
		p.offset = intParam("offset", 0, 0)
	} else {
		p.page = intParam("page", 1, 1)
		p.size = intParam("page_size", defaultPageSize, 1)
	}

	if p.size > maxPageSize {
		p.size = maxPageSize
	}
	// page*size and offset+size must not overflow when building links
	if !p.byOffset && p.page > math.MaxInt/p.size {
		ve.Add("page", "is too large")
	}
	if p.byOffset && p.offset > math.MaxInt-p.size {
		ve.Add("offset", "is too large")
	}

	if !ve.Empty() {
		return pageRequest{}, ve
	}
	return p, nil
}

// newPage wraps results in the list envelope with links to adjacent pages.
func newPage[T any](c *gin.Context, p pageRequest, results []T, total int64) dto.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := dto.Page[T]{Count: total, Results: results}

	if p.byOffset {
		if int64(p.offset+p.size) < total {
			page.Next = pageLink(c, map[string]int{"limit": p.size, "offset": p.offset + p.size})
		}
		if p.offset > 0 {
			prev := p.offset - p.size
			if prev <= 0 {
				page.Previous = pageLink(c, map[string]int{"limit": p.size}, "offset")
			} else {
				page.Previous = pageLink(c, map[string]int{"limit": p.size, "offset": prev})
			}
		}
		return page
	}

	if int64(p.page*p.size) < total {
		page.Next = pageLink(c, map[string]int{"page": p.page + 1})
	}
	if p.page > 1 {
		if p.page == 2 {
			page.Previous = pageLink(c, nil, "page")
		} else {
			page.Previous = pageLink(c, map[string]int{"page": p.page - 1})
		}
	}
	return page
}

func pageLink(c *gin.Context, set map[string]int, drop ...string) *string {
	q := c.Request.URL.Query()
	for k, v := range set {
		q.Set(k, strconv.Itoa(v))
	}
	for _, k := range drop {
		q.Del(k)
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	s := u.String()
	return &s
}

// pathID parses a numeric path parameter; anything else is treated as a
// missing entity.
func pathID(c *gin.Context, name, entity string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound(entity)
	}
	return id, nil
}
