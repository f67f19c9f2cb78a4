package domain

import "time"

type Rating struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProductID  uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_rating_product_customer"`
	CustomerID string    `json:"customer_id" gorm:"size:26;not null;uniqueIndex:idx_rating_product_customer"`
	Rating     float64   `json:"rating" gorm:"type:numeric(2,1);not null"`
	Comment    *string   `json:"comment" gorm:"type:text"`
	CreatedAt  time.Time `json:"created"`
	UpdatedAt  time.Time `json:"updated"`
}

func (Rating) TableName() string { return "product_rating" }

type CreateRatingRequest struct {
	ProductID uint    `json:"product_id" validate:"required"`
	Rating    float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   *string `json:"comment" validate:"omitempty,max=500"`
}

type UpdateRatingRequest struct {
	Rating  *float64 `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string  `json:"comment" validate:"omitempty,max=500"`
}
