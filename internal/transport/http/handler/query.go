package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/go-shop-api/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// parseListQuery reads the shared listing parameters. Range checks are left
// to the services; only malformed numbers fail here.
func parseListQuery(r *http.Request) (domain.ListQuery, error) {
	v := r.URL.Query()
	q := domain.ListQuery{
		Filter: v.Get("filter"),
		Order:  v.Get("order"),
		SortBy: v.Get("sortBy"),
		Page:   defaultPage,
		Limit:  defaultLimit,
	}
	var err error
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("page must be a number: %w", domain.ErrBadRequest)
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("limit must be a number: %w", domain.ErrBadRequest)
		}
	}
	if q.MinPrice, err = optFloat(v.Get("minPrice"), "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = optFloat(v.Get("maxPrice"), "maxPrice"); err != nil {
		return q, err
	}
	if q.CategoryID, err = optUint(v.Get("categoryId"), "categoryId"); err != nil {
		return q, err
	}
	if q.ProductID, err = optUint(v.Get("productId"), "productId"); err != nil {
		return q, err
	}
	return q, nil
}

func optFloat(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number: %w", name, domain.ErrBadRequest)
	}
	return &f, nil
}

func optUint(s, name string) (*uint, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return nil, fmt.Errorf("%s must be a positive integer: %w", name, domain.ErrBadRequest)
	}
	u := uint(n)
	return &u, nil
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (uint, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 0)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("id must be a positive integer: %w", domain.ErrBadRequest)
	}
	return uint(n), nil
}
