package handlers

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Pagination struct {
	Page       int32 `json:"page"`
	PageSize   int32 `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int32 `json:"total_pages"`
}

// NormalizePage clamps page and pageSize to their defaults and limits and
// returns the row offset of the page.
func NormalizePage(page, pageSize int32) (int32, int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

func NewPagination(page, pageSize int32, totalCount int64) Pagination {
	totalPages := int32(0)
	if totalCount > 0 {
		totalPages = int32((totalCount + int64(pageSize) - 1) / int64(pageSize))
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// PageParams reads page and page_size from the query string. Unparseable
// values fall back to the defaults.
func PageParams(r *http.Request) (int32, int32) {
	page := int32(1)
	if s := r.URL.Query().Get("page"); s != "" {
		if p, err := strconv.ParseInt(s, 10, 32); err == nil {
			page = int32(p)
		}
	}

	pageSize := int32(DefaultPageSize)
	if s := r.URL.Query().Get("page_size"); s != "" {
		if ps, err := strconv.ParseInt(s, 10, 32); err == nil {
			pageSize = int32(ps)
		}
	}
	return page, pageSize
}

// PathID parses a 32-bit integer URL parameter.
func PathID(raw string) (int32, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}
