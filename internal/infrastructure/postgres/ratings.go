package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/go-shop-api/internal/domain"
)

type RatingRepo struct{ s *Store }

func NewRatingRepo(s *Store) *RatingRepo { return &RatingRepo{s: s} }

func (r *RatingRepo) Create(ctx context.Context, rt *domain.Rating) error {
	return translate(r.s.conn(ctx).Create(rt).Error, "rating for this product")
}

func (r *RatingRepo) Get(ctx context.Context, id uint) (*domain.Rating, error) {
	var rt domain.Rating
	if err := r.s.conn(ctx).First(&rt, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("rating %d", id))
	}
	return &rt, nil
}

// List pages ratings, newest first unless order=asc. ProductID narrows to one
// product and Filter matches the comment.
func (r *RatingRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Rating, int64, error) {
	db := r.s.conn(ctx).Model(&domain.Rating{})
	if q.ProductID != nil {
		db = db.Where("product_id = ?", *q.ProductID)
	}
	q.CategoryID, q.MinPrice, q.MaxPrice = nil, nil, nil
	db = applyListQuery(db, q, "rating", "comment")

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "ratings")
	}
	var ratings []domain.Rating
	if err := db.Offset(q.Offset()).Limit(q.Limit).Find(&ratings).Error; err != nil {
		return nil, 0, translate(err, "ratings")
	}
	return ratings, total, nil
}

func (r *RatingRepo) Save(ctx context.Context, rt *domain.Rating) error {
	return translate(r.s.conn(ctx).Save(rt).Error, fmt.Sprintf("rating %d", rt.ID))
}

func (r *RatingRepo) Delete(ctx context.Context, id uint) error {
	res := r.s.conn(ctx).Delete(&domain.Rating{}, id)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("rating %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rating %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
