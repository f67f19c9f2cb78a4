package domain

import "time"

type WishlistItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CustomerID string    `json:"customer_id" gorm:"size:26;not null;uniqueIndex:idx_wishlist_customer_product"`
	ProductID  uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_wishlist_customer_product"`
	Product    *Product  `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created"`
}

func (WishlistItem) TableName() string { return "wishlist" }

type ToggleWishlistRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}

// WishlistedProduct is a product as seen from its owner's wishlist.
type WishlistedProduct struct {
	Product
	IsWishlisted bool `json:"is_wishlisted"`
}
