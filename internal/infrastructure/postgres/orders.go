package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/go-shop-api/internal/domain"
)

type OrderRepo struct{ s *Store }

func NewOrderRepo(s *Store) *OrderRepo { return &OrderRepo{s: s} }

// Create inserts the order with its address and items.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return translate(r.s.conn(ctx).Omit("Items.Product").Create(o).Error, "order")
}

func (r *OrderRepo) Get(ctx context.Context, id uint) (*domain.Order, error) {
	var o domain.Order
	if err := r.preload(r.s.conn(ctx)).First(&o, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("order %d", id))
	}
	return &o, nil
}

// List pages orders. Filter matches the status; sortBy=price sorts by total.
func (r *OrderRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Order, int64, error) {
	db := r.s.conn(ctx).Model(&domain.Order{})
	if q.Filter != "" {
		db = db.Where("LOWER(status) = LOWER(?)", q.Filter)
		q.Filter = ""
	}
	q.CategoryID = nil
	db = applyListQuery(db, q, "total_price")

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "orders")
	}
	var orders []domain.Order
	if err := r.preload(db).Offset(q.Offset()).Limit(q.Limit).Find(&orders).Error; err != nil {
		return nil, 0, translate(err, "orders")
	}
	return orders, total, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.s.conn(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("order %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id uint) error {
	res := r.s.conn(ctx).Delete(&domain.Order{}, id)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("order %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *OrderRepo) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Address").Preload("Items").Preload("Items.Product")
}
