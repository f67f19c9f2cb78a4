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

// principalTable holds the operations shared by the admins and customers
// tables. Both are keyed by a single string id and carry an email GSI.
type principalTable struct {
	client    *dynamodb.Client
	tableName string
	pk        string
}

// createItems builds the transaction that writes a principal together with
// the marker item reserving its email. Either condition failing cancels both.
func (t principalTable) createItems(id, email string, v any) ([]types.TransactWriteItem, error) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", t.tableName, err)
	}
	notExists := aws.String("attribute_not_exists(#pk)")
	names := map[string]string{"#pk": t.pk}
	return []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:                aws.String(t.tableName),
			Item:                     item,
			ConditionExpression:      notExists,
			ExpressionAttributeNames: names,
		}},
		{Put: &types.Put{
			TableName: aws.String(t.tableName),
			Item: map[string]types.AttributeValue{
				t.pk:         &types.AttributeValueMemberS{Value: emailLockKey(email)},
				fieldOwnerID: &types.AttributeValueMemberS{Value: id},
			},
			ConditionExpression:      notExists,
			ExpressionAttributeNames: names,
		}},
	}, nil
}

func (t principalTable) create(ctx context.Context, id, email string, v any) error {
	items, err := t.createItems(id, email, v)
	if err != nil {
		return err
	}
	_, err = t.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if cancellationReasons(err) != nil {
		return fmt.Errorf("email %s already registered: %w", email, domain.ErrConflict)
	}
	return err
}

func (t principalTable) get(ctx context.Context, id string, out any) error {
	res, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.tableName),
		Key:       strKey(t.pk, id),
	})
	if err != nil {
		return err
	}
	if res.Item == nil {
		return fmt.Errorf("%s %s: %w", t.tableName, id, domain.ErrNotFound)
	}
	return attributevalue.UnmarshalMap(res.Item, out)
}

func (t principalTable) getByEmail(ctx context.Context, email string, out any) error {
	res, err := t.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(t.tableName),
		IndexName:                 aws.String(emailIndex),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return err
	}
	if len(res.Items) == 0 {
		return fmt.Errorf("%s with email %s: %w", t.tableName, email, domain.ErrNotFound)
	}
	return attributevalue.UnmarshalMap(res.Items[0], out)
}

func (t principalTable) update(ctx context.Context, id string, updates map[string]any) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = t.pk
	_, err = t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.tableName),
		Key:                       strKey(t.pk, id),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("%s %s: %w", t.tableName, id, domain.ErrNotFound)
	}
	return err
}
