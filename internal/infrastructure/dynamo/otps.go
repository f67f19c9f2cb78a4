package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/go-shop-api/internal/domain"
)

// OTPRepo manages one-time codes. PK: otp_id. Next to the code rows, one
// pointer item per email (otp_id = "otp#<email>") names the live code; it
// carries no email attribute. Activation writes to the customers table in
// the same transaction.
type OTPRepo struct {
	client         *dynamodb.Client
	tableName      string
	customersTable string
}

func NewOTPRepo(client *dynamodb.Client, tableName, customersTable string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName, customersTable: customersTable}
}

// Replace makes c the live code for c.Email. The pointer swap, the delete of
// the previous code and the insert of c commit together; a concurrent
// Replace for the same email fails the pointer condition and returns
// domain.ErrConflict.
func (r *OTPRepo) Replace(ctx context.Context, c *domain.OneTimeCode) error {
	prev, err := r.CurrentID(ctx, c.Email)
	if err != nil {
		return err
	}
	items, err := r.replaceItems(prev, c)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if conditionFailedAt(cancellationReasons(err), 0) {
		return fmt.Errorf("otp for %s issued concurrently: %w", c.Email, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("replace otp for %s: %w", c.Email, err)
	}
	return nil
}

// replaceItems builds the Replace transaction. The pointer put is always the
// first item so its condition failure can be told apart.
func (r *OTPRepo) replaceItems(prev string, c *domain.OneTimeCode) ([]types.TransactWriteItem, error) {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return nil, fmt.Errorf("marshal otp: %w", err)
	}
	pointer := &types.Put{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			fieldOTPID:        &types.AttributeValueMemberS{Value: otpPointerKey(c.Email)},
			fieldCurrentOTPID: &types.AttributeValueMemberS{Value: c.OTPID},
		},
		ConditionExpression: aws.String("attribute_not_exists(otp_id)"),
	}
	if prev != "" {
		pointer.ConditionExpression = aws.String("current_otp_id = :prev")
		pointer.ExpressionAttributeValues = map[string]types.AttributeValue{
			":prev": &types.AttributeValueMemberS{Value: prev},
		}
	}
	items := []types.TransactWriteItem{{Put: pointer}}
	if prev != "" {
		items = append(items, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key:       strKey(fieldOTPID, prev),
		}})
	}
	items = append(items, types.TransactWriteItem{Put: &types.Put{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(otp_id)"),
	}})
	return items, nil
}

// CurrentID returns the id of the live code for email, or "" when none was
// issued.
func (r *OTPRepo) CurrentID(ctx context.Context, email string) (string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.tableName),
		Key:                  strKey(fieldOTPID, otpPointerKey(email)),
		ConsistentRead:       aws.Bool(true),
		ProjectionExpression: aws.String(fieldCurrentOTPID),
	})
	if err != nil {
		return "", fmt.Errorf("get otp pointer: %w", err)
	}
	if v, ok := out.Item[fieldCurrentOTPID].(*types.AttributeValueMemberS); ok {
		return v.Value, nil
	}
	return "", nil
}

func (r *OTPRepo) Get(ctx context.Context, otpID string) (*domain.OneTimeCode, error) {
	if isOTPPointerKey(otpID) {
		return nil, fmt.Errorf("otp %s: %w", otpID, domain.ErrNotFound)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldOTPID, otpID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp %s: %w", otpID, domain.ErrNotFound)
	}
	var c domain.OneTimeCode
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// IncrementAttempts records one wrong submission against an unconsumed code.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, otpID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldOTPID, otpID),
		UpdateExpression:    aws.String("ADD attempts :one"),
		ConditionExpression: aws.String("attribute_exists(otp_id) AND verified = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp %s no longer pending: %w", otpID, domain.ErrConflict)
	}
	return err
}

// ConsumeAndActivate marks c verified and activates the customer in one
// transaction, provided c is still the live code for its email. It fails
// with domain.ErrConflict when c was already consumed, and domain.ErrNotFound
// when the customer row is gone or c was superseded.
func (r *OTPRepo) ConsumeAndActivate(ctx context.Context, c *domain.OneTimeCode, customerID string, now time.Time) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: r.consumeItems(c, customerID, now),
	})
	if err == nil {
		return nil
	}
	reasons := cancellationReasons(err)
	switch {
	case conditionFailedAt(reasons, 0):
		return fmt.Errorf("otp %s already used: %w", c.OTPID, domain.ErrConflict)
	case conditionFailedAt(reasons, 1):
		return fmt.Errorf("customer %s: %w", customerID, domain.ErrNotFound)
	case conditionFailedAt(reasons, 2):
		return fmt.Errorf("otp %s was superseded: %w", c.OTPID, domain.ErrNotFound)
	}
	return fmt.Errorf("consume otp %s: %w", c.OTPID, err)
}

func (r *OTPRepo) consumeItems(c *domain.OneTimeCode, customerID string, now time.Time) []types.TransactWriteItem {
	ts, _ := attributevalue.Marshal(now.UTC())
	return []types.TransactWriteItem{
		{Update: &types.Update{
			TableName:           aws.String(r.tableName),
			Key:                 strKey(fieldOTPID, c.OTPID),
			UpdateExpression:    aws.String("SET verified = :t"),
			ConditionExpression: aws.String("attribute_exists(otp_id) AND verified = :f"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t": &types.AttributeValueMemberBOOL{Value: true},
				":f": &types.AttributeValueMemberBOOL{Value: false},
			},
		}},
		{Update: &types.Update{
			TableName:           aws.String(r.customersTable),
			Key:                 strKey(fieldCustomerID, customerID),
			UpdateExpression:    aws.String("SET is_active = :t, updated_at = :now"),
			ConditionExpression: aws.String("attribute_exists(customer_id)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t":   &types.AttributeValueMemberBOOL{Value: true},
				":now": ts,
			},
		}},
		{ConditionCheck: &types.ConditionCheck{
			TableName:           aws.String(r.tableName),
			Key:                 strKey(fieldOTPID, otpPointerKey(c.Email)),
			ConditionExpression: aws.String("current_otp_id = :id"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":id": &types.AttributeValueMemberS{Value: c.OTPID},
			},
		}},
	}
}
