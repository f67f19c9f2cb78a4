package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/go-shop-api/internal/domain"
)

type ProductRepo struct{ s *Store }

func NewProductRepo(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return translate(r.s.conn(ctx).Create(p).Error, "product")
}

func (r *ProductRepo) Get(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := r.s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("product %d", id))
	}
	return &p, nil
}

// GetForUpdate loads the products with ids and row-locks them until the
// surrounding transaction ends. Missing ids are simply absent from the map.
func (r *ProductRepo) GetForUpdate(ctx context.Context, ids []uint) (map[uint]*domain.Product, error) {
	var products []domain.Product
	err := r.s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "products")
	}
	out := make(map[uint]*domain.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (r *ProductRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Product, int64, error) {
	base := applyListQuery(r.s.conn(ctx).Model(&domain.Product{}), q, "price", "title", "description")

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "products")
	}
	var products []domain.Product
	if err := base.Offset(q.Offset()).Limit(q.Limit).Find(&products).Error; err != nil {
		return nil, 0, translate(err, "products")
	}
	return products, total, nil
}

// Save writes every column of p.
func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	return translate(r.s.conn(ctx).Omit(clause.Associations).Save(p).Error, fmt.Sprintf("product %d", p.ID))
}

func (r *ProductRepo) Delete(ctx context.Context, id uint) error {
	res := r.s.conn(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("product %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DecrementStock takes qty units off the product's stock, failing with
// domain.ErrBadRequest when fewer remain.
func (r *ProductRepo) DecrementStock(ctx context.Context, id uint, qty int) error {
	res := r.s.conn(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("product %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("insufficient stock for product %d: %w", id, domain.ErrBadRequest)
	}
	return nil
}

// RefreshAverageRating recomputes average_rating from product_rating,
// rounded to one decimal. A product without ratings goes back to 0.
func (r *ProductRepo) RefreshAverageRating(ctx context.Context, id uint) error {
	avg := r.s.conn(ctx).Model(&domain.Rating{}).
		Select("COALESCE(ROUND(AVG(rating)::numeric, 1), 0)").
		Where("product_id = ?", id)
	err := r.s.conn(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumn("average_rating", avg).Error
	return translate(err, fmt.Sprintf("product %d", id))
}
