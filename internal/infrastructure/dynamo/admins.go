package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/go-shop-api/internal/domain"
)

// AdminRepo provides typed DynamoDB operations for the admins table.
type AdminRepo struct {
	t principalTable
}

func NewAdminRepo(client *dynamodb.Client, tableName string) *AdminRepo {
	return &AdminRepo{t: principalTable{client: client, tableName: tableName, pk: fieldAdminID}}
}

// Create inserts a new admin. A taken email yields domain.ErrConflict.
func (r *AdminRepo) Create(ctx context.Context, a *domain.Admin) error {
	return r.t.create(ctx, a.AdminID, a.Email, a)
}

func (r *AdminRepo) Get(ctx context.Context, adminID string) (*domain.Admin, error) {
	var a domain.Admin
	if err := r.t.get(ctx, adminID, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var a domain.Admin
	if err := r.t.getByEmail(ctx, email, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetRefreshHash stores the hashed refresh token; nil clears it.
func (r *AdminRepo) SetRefreshHash(ctx context.Context, adminID string, hash *string) error {
	return r.t.update(ctx, adminID, map[string]any{fieldHashedRefreshToken: hash})
}
