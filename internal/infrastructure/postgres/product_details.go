package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/go-shop-api/internal/domain"
)

type ProductDetailRepo struct{ s *Store }

func NewProductDetailRepo(s *Store) *ProductDetailRepo { return &ProductDetailRepo{s: s} }

func (r *ProductDetailRepo) Create(ctx context.Context, d *domain.ProductDetail) error {
	return translate(r.s.conn(ctx).Omit("Product").Create(d).Error, fmt.Sprintf("details for product %d", d.ProductID))
}

func (r *ProductDetailRepo) Get(ctx context.Context, id uint) (*domain.ProductDetail, error) {
	var d domain.ProductDetail
	if err := r.s.conn(ctx).Preload("Product").First(&d, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("product detail %d", id))
	}
	return &d, nil
}

// List pages details ordered by product, ascending unless order=desc. Filter
// matches the model number or the material; ProductID narrows to one product.
func (r *ProductDetailRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.ProductDetail, int64, error) {
	db := r.s.conn(ctx).Model(&domain.ProductDetail{})
	if q.Filter != "" {
		like := containsPattern(q.Filter)
		db = db.Where("model_number ILIKE ? OR material ILIKE ?", like, like)
	}
	if q.ProductID != nil {
		db = db.Where("product_id = ?", *q.ProductID)
	}
	dir := "ASC"
	if strings.EqualFold(q.Order, "desc") {
		dir = "DESC"
	}

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "product details")
	}
	var details []domain.ProductDetail
	err := db.Preload("Product").Order("product_id " + dir).Order("id " + dir).
		Offset(q.Offset()).Limit(q.Limit).Find(&details).Error
	if err != nil {
		return nil, 0, translate(err, "product details")
	}
	return details, total, nil
}

func (r *ProductDetailRepo) Save(ctx context.Context, d *domain.ProductDetail) error {
	return translate(r.s.conn(ctx).Omit("Product").Save(d).Error, fmt.Sprintf("product detail %d", d.ID))
}

func (r *ProductDetailRepo) Delete(ctx context.Context, id uint) error {
	res := r.s.conn(ctx).Delete(&domain.ProductDetail{}, id)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("product detail %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product detail %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
