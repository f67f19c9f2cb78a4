package order

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/infrastructure/sns"
	"github.com/go-shop-api/internal/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req domain.CreateOrderRequest) (*domain.Order, error)
	Get(ctx context.Context, actor domain.Actor, id uint) (*domain.Order, error)
	List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Order], error)
	UpdateStatus(ctx context.Context, id uint, req domain.UpdateOrderRequest) (*domain.Order, error)
	Delete(ctx context.Context, id uint) error
}

type orderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id uint) (*domain.Order, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

type stockStore interface {
	GetForUpdate(ctx context.Context, ids []uint) (map[uint]*domain.Product, error)
	DecrementStock(ctx context.Context, id uint, qty int) error
}

type txRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ServiceDeps struct {
	Orders   orderStore
	Products stockStore
	Tx       txRunner
	SMS      sns.SMSSender // optional
	Brand    string
	Logger   logrus.FieldLogger
}

type service struct {
	orders   orderStore
	products stockStore
	tx       txRunner
	sms      sns.SMSSender
	brand    string
	log      logrus.FieldLogger
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		orders:   deps.Orders,
		products: deps.Products,
		tx:       deps.Tx,
		sms:      deps.SMS,
		brand:    deps.Brand,
		log:      deps.Logger,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

type line struct {
	productID uint
	quantity  int
}

// mergeLines sums quantities of repeated products, keeping first-seen order.
func mergeLines(in []domain.OrderLineInput) []line {
	idx := make(map[uint]int, len(in))
	out := make([]line, 0, len(in))
	for _, l := range in {
		if i, ok := idx[l.ProductID]; ok {
			out[i].quantity += l.Quantity
			continue
		}
		idx[l.ProductID] = len(out)
		out = append(out, line{productID: l.ProductID, quantity: l.Quantity})
	}
	return out
}

func roundMoney(v float64) float64 { return math.Round(v*100) / 100 }

func (s *service) Create(ctx context.Context, actor domain.Actor, req domain.CreateOrderRequest) (*domain.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if !actor.IsActive {
		return nil, fmt.Errorf("account is not activated: %w", domain.ErrForbidden)
	}
	lines := mergeLines(req.OrderDetails)
	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.productID
	}

	o := &domain.Order{
		CustomerID: actor.ID,
		Status:     domain.OrderPending,
		Address: domain.OrderAddress{
			Region:      req.Address.Region,
			City:        req.Address.City,
			Street:      req.Address.Street,
			ZipCode:     req.Address.ZipCode,
			HouseNumber: req.Address.HouseNumber,
			Phone:       req.Address.Phone,
		},
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		products, err := s.products.GetForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		var total float64
		items := make([]domain.OrderItem, 0, len(lines))
		for _, l := range lines {
			p, ok := products[l.productID]
			if !ok {
				return fmt.Errorf("product %d does not exist: %w", l.productID, domain.ErrBadRequest)
			}
			if p.Stock < l.quantity {
				return fmt.Errorf("not enough stock for %q: %d left, %d requested: %w", p.Title, p.Stock, l.quantity, domain.ErrBadRequest)
			}
			total += p.Price * float64(l.quantity)
			items = append(items, domain.OrderItem{ProductID: p.ID, Quantity: l.quantity, UnitPrice: p.Price})
		}
		for _, l := range lines {
			if err := s.products.DecrementStock(ctx, l.productID, l.quantity); err != nil {
				return err
			}
		}
		o.TotalPrice = roundMoney(total)
		o.Items = items
		return s.orders.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.confirm(ctx, o)
	return o, nil
}

// confirm texts the order's address phone. Failures are logged only.
func (s *service) confirm(ctx context.Context, o *domain.Order) {
	if s.sms == nil || o.Address.Phone == "" {
		return
	}
	msg := fmt.Sprintf("%s: order #%d received, total %.2f. We will let you know when it ships.", s.brand, o.ID, o.TotalPrice)
	if err := s.sms.SendSMS(ctx, o.Address.Phone, msg); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("order confirmation sms failed")
	}
}

func (s *service) Get(ctx context.Context, actor domain.Actor, id uint) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(o.CustomerID) {
		return nil, fmt.Errorf("order %d belongs to another customer: %w", id, domain.ErrForbidden)
	}
	return o, nil
}

func (s *service) List(ctx context.Context, q domain.ListQuery) (*domain.Page[domain.Order], error) {
	if err := validate.Struct(q); err != nil {
		return nil, err
	}
	items, total, err := s.orders.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.Order]{Items: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uint, req domain.UpdateOrderRequest) (*domain.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.orders.Delete(ctx, id)
}
