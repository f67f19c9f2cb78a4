package domain

import "strings"

// ListQuery is the shared filter/sort/page query of the listing endpoints.
type ListQuery struct {
	Filter     string   `json:"filter" validate:"omitempty,max=100"`
	Order      string   `json:"order" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page       int      `json:"page" validate:"gte=1"`
	Limit      int      `json:"limit" validate:"gte=1,lte=100"`
	MinPrice   *float64 `json:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice   *float64 `json:"maxPrice" validate:"omitempty,gte=0"`
	SortBy     string   `json:"sortBy" validate:"omitempty,oneof=createdAt price"`
	CategoryID *uint    `json:"categoryId"`
	ProductID  *uint    `json:"productId"`
}

// Descending reports whether results are sorted newest/highest first.
// Anything other than an explicit "asc" sorts descending.
func (q ListQuery) Descending() bool {
	return !strings.EqualFold(q.Order, "asc")
}

// Offset is the number of rows skipped before the requested page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Page is one slice of a listing plus the total number of matching rows.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
