package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Product struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"size:100;not null"`
	CategoryID     *uint      `json:"category_id" gorm:"index"`
	Description    *string    `json:"description" gorm:"size:1000"`
	OriginPrice    *float64   `json:"origin_price" gorm:"type:numeric(10,2)"`
	Price          float64    `json:"price" gorm:"type:numeric(10,2);not null;index"`
	Image          StringList `json:"image" gorm:"type:jsonb"`
	Color          StringList `json:"color" gorm:"type:jsonb"`
	Stock          int        `json:"stock" gorm:"not null;default:0"`
	AverageRating  float64    `json:"average_rating" gorm:"type:numeric(2,1);not null;default:0"`
	Discount       int        `json:"discount" gorm:"not null;default:0"`
	SKU            string     `json:"sku" gorm:"column:sku;size:50;not null;uniqueIndex"`
	AdditionalInfo *string    `json:"additional_info" gorm:"type:text"`
	Tags           StringList `json:"tags" gorm:"type:jsonb"`
	IsLiked        bool       `json:"is_liked" gorm:"-"`
	Ratings        []Rating   `json:"ratings,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time  `json:"created"`
	UpdatedAt      time.Time  `json:"updated"`
}

// ProductInput carries the form fields of a product create/update request.
// Pointer fields are optional on update; validation runs before any upload.
type ProductInput struct {
	Title          *string  `validate:"omitempty,min=1,max=100"`
	CategoryID     *uint    `validate:"omitempty"`
	Description    *string  `validate:"omitempty,max=1000"`
	OriginPrice    *float64 `validate:"omitempty,gte=0"`
	Price          *float64 `validate:"omitempty,gt=0"`
	Color          []string `validate:"omitempty,dive,max=30"`
	Stock          *int     `validate:"omitempty,gte=0"`
	Discount       *int     `validate:"omitempty,gte=0,lte=100"`
	SKU            *string  `validate:"omitempty,min=1,max=50"`
	AdditionalInfo *string  `validate:"omitempty"`
	Tags           []string `validate:"omitempty,dive,max=50"`
}

// ImageUpload is a single file attached to a product request.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// StringList is a []string persisted as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("string list: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	*l = out
	return nil
}
