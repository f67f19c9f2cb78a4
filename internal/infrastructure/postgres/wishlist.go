package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/go-shop-api/internal/domain"
)

type WishlistRepo struct{ s *Store }

func NewWishlistRepo(s *Store) *WishlistRepo { return &WishlistRepo{s: s} }

// Find returns the wishlist row for the pair, or nil when there is none.
func (r *WishlistRepo) Find(ctx context.Context, customerID string, productID uint) (*domain.WishlistItem, error) {
	var item domain.WishlistItem
	err := r.s.conn(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "wishlist item")
	}
	return &item, nil
}

func (r *WishlistRepo) Add(ctx context.Context, item *domain.WishlistItem) error {
	return translate(r.s.conn(ctx).Omit("Product").Create(item).Error, "wishlist item")
}

func (r *WishlistRepo) Remove(ctx context.Context, id uint) error {
	return translate(r.s.conn(ctx).Delete(&domain.WishlistItem{}, id).Error, fmt.Sprintf("wishlist item %d", id))
}

// Products returns the products on a customer's wishlist, most recently added first.
func (r *WishlistRepo) Products(ctx context.Context, customerID string) ([]domain.Product, error) {
	var products []domain.Product
	err := r.s.conn(ctx).
		Joins("JOIN wishlist ON wishlist.product_id = products.id").
		Where("wishlist.customer_id = ?", customerID).
		Order("wishlist.created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "wishlist")
	}
	return products, nil
}

// LikedAmong reports which of productIDs the customer has wishlisted.
func (r *WishlistRepo) LikedAmong(ctx context.Context, customerID string, productIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if len(productIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.s.conn(ctx).Model(&domain.WishlistItem{}).
		Where("customer_id = ? AND product_id IN ?", customerID, productIDs).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, translate(err, "wishlist")
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
