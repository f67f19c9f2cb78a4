package product

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, in domain.ProductInput, files []domain.ImageUpload) (*domain.Product, error)
	Get(ctx context.Context, id uint) (*domain.Product, error)
	// List pages products. A non-empty customerID marks wishlisted items as liked.
	List(ctx context.Context, q domain.ListQuery, customerID string) (*domain.Page[domain.Product], error)
	Update(ctx context.Context, id uint, in domain.ProductInput, files []domain.ImageUpload) (*domain.Product, error)
	Delete(ctx context.Context, id uint) error
}

type productStore interface {
	Create(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, id uint) (*domain.Product, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Product, int64, error)
	Save(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id uint) error
}

type likedLookup interface {
	LikedAmong(ctx context.Context, customerID string, productIDs []uint) (map[uint]bool, error)
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

type ServiceDeps struct {
	Products      productStore
	Wishlist      likedLookup
	Images        imageStore
	MaxImageBytes int64
	MaxImages     int
	Logger        logrus.FieldLogger
}

type service struct {
	products      productStore
	wishlist      likedLookup
	images        imageStore
	maxImageBytes int64
	maxImages     int
	log           logrus.FieldLogger
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		products:      deps.Products,
		wishlist:      deps.Wishlist,
		images:        deps.Images,
		maxImageBytes: deps.MaxImageBytes,
		maxImages:     deps.MaxImages,
		log:           deps.Logger,
	}
	if s.maxImageBytes == 0 {
		s.maxImageBytes = 5 << 20
	}
	if s.maxImages == 0 {
		s.maxImages = 10
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

func (s *service) Create(ctx context.Context, in domain.ProductInput, files []domain.ImageUpload) (*domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Title == nil || in.Price == nil || in.SKU == nil {
		return nil, fmt.Errorf("title, price and sku are required: %w", domain.ErrBadRequest)
	}
	images, err := s.sniffImages(files)
	if err != nil {
		return nil, err
	}
	urls, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{Image: urls}
	apply(p, in)
	if err := s.products.Create(ctx, p); err != nil {
		s.deleteImages(ctx, urls)
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, id uint) (*domain.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *service) List(ctx context.Context, q domain.ListQuery, customerID string) (*domain.Page[domain.Product], error) {
	if err := validate.Struct(q); err != nil {
		return nil, err
	}
	items, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if customerID != "" && len(items) > 0 {
		ids := make([]uint, len(items))
		for i := range items {
			ids[i] = items[i].ID
		}
		liked, err := s.wishlist.LikedAmong(ctx, customerID, ids)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].IsLiked = liked[items[i].ID]
		}
	}
	return &domain.Page[domain.Product]{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// Update applies the set fields of in. New files replace every existing image.
func (s *service) Update(ctx context.Context, id uint, in domain.ProductInput, files []domain.ImageUpload) (*domain.Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.sniffImages(files)
	if err != nil {
		return nil, err
	}

	var old []string
	if len(images) > 0 {
		urls, err := s.uploadImages(ctx, images)
		if err != nil {
			return nil, err
		}
		old, p.Image = p.Image, urls
	}
	apply(p, in)
	if err := s.products.Save(ctx, p); err != nil {
		if len(images) > 0 {
			s.deleteImages(ctx, p.Image)
		}
		return nil, err
	}
	s.deleteImages(ctx, old)
	return p, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.deleteImages(ctx, p.Image)
	return nil
}

func apply(p *domain.Product, in domain.ProductInput) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.OriginPrice != nil {
		p.OriginPrice = in.OriginPrice
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Color != nil {
		p.Color = in.Color
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.SKU != nil {
		p.SKU = *in.SKU
	}
	if in.AdditionalInfo != nil {
		p.AdditionalInfo = in.AdditionalInfo
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
}
