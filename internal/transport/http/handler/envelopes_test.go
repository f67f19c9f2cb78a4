package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-shop-api/internal/domain"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.ErrBadRequest:      http.StatusBadRequest,
		domain.ErrExpired:         http.StatusBadRequest,
		domain.ErrMismatch:        http.StatusBadRequest,
		domain.ErrUnauthorized:    http.StatusUnauthorized,
		domain.ErrForbidden:       http.StatusForbidden,
		domain.ErrNotFound:        http.StatusNotFound,
		domain.ErrConflict:        http.StatusConflict,
		domain.ErrTooManyAttempts: http.StatusTooManyRequests,
		domain.ErrUpstream:        http.StatusBadGateway,
		assert.AnError:            http.StatusInternalServerError,
	}
	for err, want := range cases {
		wrapped := fmt.Errorf("context: %w", err)
		assert.Equal(t, want, statusFor(wrapped), err.Error())
	}
}

func TestWriteServiceError_HidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error","error_code":500}`, rr.Body.String())
}

func TestParseListQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/products?page=3&limit=20&minPrice=10&maxPrice=99.5&categoryId=4", nil)
	q, err := parseListQuery(r)

	assert.NoError(t, err)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, 10.0, *q.MinPrice)
	assert.Equal(t, 99.5, *q.MaxPrice)
	assert.Equal(t, uint(4), *q.CategoryID)
	assert.Nil(t, q.ProductID)
}

func TestParseListQuery_Malformed(t *testing.T) {
	for _, target := range []string{"/p?page=x", "/p?limit=1.5", "/p?minPrice=cheap", "/p?categoryId=-1"} {
		_, err := parseListQuery(httptest.NewRequest(http.MethodGet, target, nil))
		assert.ErrorIs(t, err, domain.ErrBadRequest, target)
	}
}
