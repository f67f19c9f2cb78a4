package domain

import "time"

const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

type Order struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	CustomerID string       `json:"customer_id" gorm:"size:26;not null;index"`
	TotalPrice float64      `json:"total_price" gorm:"type:numeric(12,2);not null"`
	Status     string       `json:"status" gorm:"size:20;not null;default:pending"`
	Address    OrderAddress `json:"address" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Items      []OrderItem  `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time    `json:"created"`
	UpdatedAt  time.Time    `json:"updated"`
}

type OrderAddress struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	OrderID     uint   `json:"-" gorm:"uniqueIndex"`
	Region      string `json:"region" gorm:"size:100"`
	City        string `json:"city" gorm:"size:100"`
	Street      string `json:"street" gorm:"size:200"`
	ZipCode     string `json:"zip_code" gorm:"size:20"`
	HouseNumber string `json:"house_number" gorm:"size:20"`
	Phone       string `json:"phone" gorm:"size:20"`
}

type OrderItem struct {
	ID        uint     `json:"-" gorm:"primaryKey"`
	OrderID   uint     `json:"-" gorm:"index"`
	ProductID uint     `json:"product_id" gorm:"not null"`
	Quantity  int      `json:"quantity" gorm:"not null"`
	UnitPrice float64  `json:"unit_price" gorm:"type:numeric(10,2);not null"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type AddressInput struct {
	Region      string `json:"region" validate:"required,max=100"`
	City        string `json:"city" validate:"required,max=100"`
	Street      string `json:"street" validate:"required,max=200"`
	ZipCode     string `json:"zip_code" validate:"omitempty,max=20"`
	HouseNumber string `json:"house_number" validate:"omitempty,max=20"`
	Phone       string `json:"phone" validate:"required,e164"`
}

type OrderLineInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Address      AddressInput     `json:"address" validate:"required"`
	OrderDetails []OrderLineInput `json:"order_details" validate:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}
