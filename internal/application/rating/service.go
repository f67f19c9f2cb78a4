package rating

import (
	"context"
	"fmt"
	"math"

	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req domain.CreateRatingRequest) (*domain.Rating, error)
	Get(ctx context.Context, id uint) (*domain.Rating, error)
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Rating], error)
	Update(ctx context.Context, actor domain.Actor, id uint, req domain.UpdateRatingRequest) (*domain.Rating, error)
	Delete(ctx context.Context, actor domain.Actor, id uint) error
}

type ratingStore interface {
	Create(ctx context.Context, r *domain.Rating) error
	Get(ctx context.Context, id uint) (*domain.Rating, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Rating, int64, error)
	Save(ctx context.Context, r *domain.Rating) error
	Delete(ctx context.Context, id uint) error
}

type productStore interface {
	Get(ctx context.Context, id uint) (*domain.Product, error)
	RefreshAverageRating(ctx context.Context, id uint) error
}

type txRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ServiceDeps struct {
	Ratings  ratingStore
	Products productStore
	Tx       txRunner
}

type service struct {
	ratings  ratingStore
	products productStore
	tx       txRunner
}

func NewService(deps ServiceDeps) Service {
	return &service{ratings: deps.Ratings, products: deps.Products, tx: deps.Tx}
}

func roundRating(v float64) float64 { return math.Round(v*10) / 10 }

func (s *service) Create(ctx context.Context, actor domain.Actor, req domain.CreateRatingRequest) (*domain.Rating, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if !actor.IsActive {
		return nil, fmt.Errorf("account is not activated: %w", domain.ErrForbidden)
	}
	r := &domain.Rating{
		ProductID:  req.ProductID,
		CustomerID: actor.ID,
		Rating:     roundRating(req.Rating),
		Comment:    req.Comment,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.products.Get(ctx, req.ProductID); err != nil {
			return err
		}
		if err := s.ratings.Create(ctx, r); err != nil {
			return err
		}
		return s.products.RefreshAverageRating(ctx, r.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) Get(ctx context.Context, id uint) (*domain.Rating, error) {
	return s.ratings.Get(ctx, id)
}

func (s *service) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Rating], error) {
	if err := validate.Struct(q); err != nil {
		return nil, err
	}
	items, total, err := s.ratings.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.Rating]{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id uint, req domain.UpdateRatingRequest) (*domain.Rating, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	var r *domain.Rating
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if r, err = s.owned(ctx, actor, id); err != nil {
			return err
		}
		if req.Rating != nil {
			r.Rating = roundRating(*req.Rating)
		}
		if req.Comment != nil {
			r.Comment = req.Comment
		}
		if err := s.ratings.Save(ctx, r); err != nil {
			return err
		}
		return s.products.RefreshAverageRating(ctx, r.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		r, err := s.owned(ctx, actor, id)
		if err != nil {
			return err
		}
		if err := s.ratings.Delete(ctx, id); err != nil {
			return err
		}
		return s.products.RefreshAverageRating(ctx, r.ProductID)
	})
}

// owned loads the rating if actor is its author or an admin.
func (s *service) owned(ctx context.Context, actor domain.Actor, id uint) (*domain.Rating, error) {
	r, err := s.ratings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(r.CustomerID) {
		return nil, fmt.Errorf("rating %d belongs to another customer: %w", id, domain.ErrForbidden)
	}
	return r, nil
}
