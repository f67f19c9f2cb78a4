package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/go-shop-api/internal/domain"
)

// CustomerRepo provides typed DynamoDB operations for the customers table.
type CustomerRepo struct {
	t principalTable
}

func NewCustomerRepo(client *dynamodb.Client, tableName string) *CustomerRepo {
	return &CustomerRepo{t: principalTable{client: client, tableName: tableName, pk: fieldCustomerID}}
}

// Create inserts a new customer. A taken email yields domain.ErrConflict.
func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	return r.t.create(ctx, c.CustomerID, c.Email, c)
}

func (r *CustomerRepo) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.t.get(ctx, customerID, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.t.getByEmail(ctx, email, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetRefreshHash stores the hashed refresh token; nil clears it.
func (r *CustomerRepo) SetRefreshHash(ctx context.Context, customerID string, hash *string) error {
	return r.t.update(ctx, customerID, map[string]any{fieldHashedRefreshToken: hash})
}
