package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/go-shop-api/internal/domain"
)

// Open connects to Postgres. SQL statements are logged through log when
// logSQL is set, otherwise only slow queries and errors are.
func Open(dsn string, logSQL bool, log logrus.FieldLogger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if logSQL {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the catalog schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Product{},
		&domain.ProductDetail{},
		&domain.Rating{},
		&domain.Order{},
		&domain.OrderAddress{},
		&domain.OrderItem{},
		&domain.WishlistItem{},
	)
}

// Store owns the connection and the transaction carried in a context.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

type txKey struct{}

// InTx runs fn in a transaction. Repositories built on this Store join it
// when handed the context passed to fn.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx, or the pool.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Ping checks connectivity for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps gorm errors onto domain sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s not found: %w", what, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, domain.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s is referenced by other records: %w", what, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

var sortColumns = map[string]string{
	"":          "created_at",
	"createdAt": "created_at",
	"price":     "price",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds an ILIKE pattern matching filter literally anywhere
// in the column. Backslash is the default LIKE escape in Postgres.
func containsPattern(filter string) string {
	return "%" + likeEscaper.Replace(filter) + "%"
}

// applyListQuery adds the shared filter, price window, category and ordering
// of listing endpoints. textCols are matched case-insensitively by Filter.
// priceCol is the column MinPrice/MaxPrice and sortBy=price refer to.
func applyListQuery(db *gorm.DB, q domain.ListQuery, priceCol string, textCols ...string) *gorm.DB {
	if q.Filter != "" && len(textCols) > 0 {
		like := containsPattern(q.Filter)
		cond := db.Session(&gorm.Session{NewDB: true})
		for i, col := range textCols {
			if i == 0 {
				cond = cond.Where(col+" ILIKE ?", like)
				continue
			}
			cond = cond.Or(col+" ILIKE ?", like)
		}
		db = db.Where(cond)
	}
	if q.MinPrice != nil {
		db = db.Where(priceCol+" >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where(priceCol+" <= ?", *q.MaxPrice)
	}
	if q.CategoryID != nil {
		db = db.Where("category_id = ?", *q.CategoryID)
	}
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	if col == "price" {
		col = priceCol
	}
	dir := "ASC"
	if q.Descending() {
		dir = "DESC"
	}
	return db.Order(col + " " + dir).Order("id " + dir)
}
