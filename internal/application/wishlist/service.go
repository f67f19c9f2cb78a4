package wishlist

import (
	"context"

	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/pkg/validate"
)

type Service interface {
	// Toggle removes the product from the customer's wishlist when present and
	// adds it otherwise. It reports whether the product is now wishlisted.
	Toggle(ctx context.Context, customerID string, req domain.ToggleWishlistRequest) (bool, error)
	List(ctx context.Context, customerID string) ([]domain.WishlistedProduct, error)
}

type wishlistStore interface {
	Find(ctx context.Context, customerID string, productID uint) (*domain.WishlistItem, error)
	Add(ctx context.Context, item *domain.WishlistItem) error
	Remove(ctx context.Context, id uint) error
	Products(ctx context.Context, customerID string) ([]domain.Product, error)
}

type productFinder interface {
	Get(ctx context.Context, id uint) (*domain.Product, error)
}

type txRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ServiceDeps struct {
	Wishlist wishlistStore
	Products productFinder
	Tx       txRunner
}

type service struct {
	wishlist wishlistStore
	products productFinder
	tx       txRunner
}

func NewService(deps ServiceDeps) Service {
	return &service{wishlist: deps.Wishlist, products: deps.Products, tx: deps.Tx}
}

func (s *service) Toggle(ctx context.Context, customerID string, req domain.ToggleWishlistRequest) (bool, error) {
	if err := validate.Struct(req); err != nil {
		return false, err
	}
	var added bool
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		item, err := s.wishlist.Find(ctx, customerID, req.ProductID)
		if err != nil {
			return err
		}
		if item != nil {
			added = false
			return s.wishlist.Remove(ctx, item.ID)
		}
		if _, err := s.products.Get(ctx, req.ProductID); err != nil {
			return err
		}
		added = true
		return s.wishlist.Add(ctx, &domain.WishlistItem{CustomerID: customerID, ProductID: req.ProductID})
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *service) List(ctx context.Context, customerID string) ([]domain.WishlistedProduct, error) {
	products, err := s.wishlist.Products(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.WishlistedProduct, len(products))
	for i, p := range products {
		p.IsLiked = true
		out[i] = domain.WishlistedProduct{Product: p, IsWishlisted: true}
	}
	return out, nil
}
