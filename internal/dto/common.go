package dto

import (
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the error envelope produced by the Fiber error handler.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	ItemCount    int   `json:"itemCount"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalPages   int   `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
}

// Page wraps a paginated result set.
type Page[T any] struct {
	Items []T      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

func NewPage[T any](items []T, total int64, page, limit int) Page[T] {
	// Services normalize paging before querying; guard the divisor anyway.
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return Page[T]{
		Items: items,
		Meta: PageMeta{
			ItemCount:    len(items),
			TotalItems:   total,
			ItemsPerPage: limit,
			TotalPages:   totalPages,
			CurrentPage:  page,
		},
	}
}

var validate = validator.New()

// Validate runs struct-tag validation on a request DTO.
func Validate(s any) error {
	return validate.Struct(s)
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
