package common

import (
	"net/http"
	"strconv"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	Count       int `json:"count"`
	Limit       int `json:"limit"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

// NewPagination assembles the pagination block from query results.
func NewPagination(page, limit, count int, total int64) Pagination {
	if limit < 1 {
		limit = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		TotalItems:  int(total),
		Count:       count,
		Limit:       limit,
		CurrentPage: page,
		TotalPages:  totalPages,
	}
}

// ParsePagination extracts page and limit parameters from query values.
func ParsePagination(r *http.Request, defaultLimit int) (page, limit int) {
	page = 1
	limit = defaultLimit
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	return
}
