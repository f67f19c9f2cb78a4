package productdetail

import (
	"context"

	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, req domain.CreateProductDetailRequest) (*domain.ProductDetail, error)
	Get(ctx context.Context, id uint) (*domain.ProductDetail, error)
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.ProductDetail], error)
	Update(ctx context.Context, id uint, req domain.ProductDetailFields) (*domain.ProductDetail, error)
	Delete(ctx context.Context, id uint) error
}

type detailStore interface {
	Create(ctx context.Context, d *domain.ProductDetail) error
	Get(ctx context.Context, id uint) (*domain.ProductDetail, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.ProductDetail, int64, error)
	Save(ctx context.Context, d *domain.ProductDetail) error
	Delete(ctx context.Context, id uint) error
}

type productStore interface {
	Get(ctx context.Context, id uint) (*domain.Product, error)
}

type txRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ServiceDeps struct {
	Details  detailStore
	Products productStore
	Tx       txRunner
}

type service struct {
	details  detailStore
	products productStore
	tx       txRunner
}

func NewService(deps ServiceDeps) Service {
	return &service{details: deps.Details, products: deps.Products, tx: deps.Tx}
}

func (s *service) Create(ctx context.Context, req domain.CreateProductDetailRequest) (*domain.ProductDetail, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	d := &domain.ProductDetail{ProductID: req.ProductID}
	apply(d, req.ProductDetailFields)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.products.Get(ctx, req.ProductID); err != nil {
			return err
		}
		return s.details.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) Get(ctx context.Context, id uint) (*domain.ProductDetail, error) {
	return s.details.Get(ctx, id)
}

func (s *service) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.ProductDetail], error) {
	if err := validate.Struct(q); err != nil {
		return nil, err
	}
	items, total, err := s.details.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.ProductDetail]{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *service) Update(ctx context.Context, id uint, req domain.ProductDetailFields) (*domain.ProductDetail, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	d, err := s.details.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(d, req)
	if err := s.details.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.details.Delete(ctx, id)
}

func apply(d *domain.ProductDetail, f domain.ProductDetailFields) {
	if f.Width != nil {
		d.Width = f.Width
	}
	if f.Height != nil {
		d.Height = f.Height
	}
	if f.Depth != nil {
		d.Depth = f.Depth
	}
	if f.Weight != nil {
		d.Weight = f.Weight
	}
	if f.ModelNumber != nil {
		d.ModelNumber = f.ModelNumber
	}
	if f.Material != nil {
		d.Material = f.Material
	}
	if f.Configuration != nil {
		d.Configuration = f.Configuration
	}
	if f.UpholsteryMaterial != nil {
		d.UpholsteryMaterial = f.UpholsteryMaterial
	}
	if f.FillingMaterial != nil {
		d.FillingMaterial = f.FillingMaterial
	}
	if f.MaxLoadCapacity != nil {
		d.MaxLoadCapacity = f.MaxLoadCapacity
	}
	if f.OriginCountry != nil {
		d.OriginCountry = f.OriginCountry
	}
	if f.WarrantySummary != nil {
		d.WarrantySummary = *f.WarrantySummary
	}
}
