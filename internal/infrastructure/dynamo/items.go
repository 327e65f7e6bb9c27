package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/madadgarapp/listings-api/internal/domain"
)

// ItemRepo provides typed DynamoDB operations for the items table.
type ItemRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewItemRepo(client *dynamodb.Client, tableName string) *ItemRepo {
	return &ItemRepo{client: client, tableName: tableName}
}

func (r *ItemRepo) Put(ctx context.Context, it *domain.Item) error {
	item, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ItemRepo) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("item_id", itemID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item not found: %w", domain.ErrNotFound)
	}
	var it domain.Item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// ListActive queries the is_active-created_at GSI newest-first.
func (r *ItemRepo) ListActive(ctx context.Context, limit int32) ([]domain.Item, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("is_active-created_at-index"),
		KeyConditionExpression: aws.String("is_active = :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var items []domain.Item
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByOwner returns the owner's active items, newest first.
func (r *ItemRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("owner_id-index"),
		KeyConditionExpression: aws.String("owner_id = :oid"),
		FilterExpression:       aws.String("is_active = :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid": &types.AttributeValueMemberS{Value: ownerID},
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if err != nil {
		return nil, err
	}
	var items []domain.Item
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *ItemRepo) Update(ctx context.Context, itemID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("item_id", itemID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// SoftDelete marks the item inactive. The row is kept for history.
func (r *ItemRepo) SoftDelete(ctx context.Context, itemID string) error {
	return r.Update(ctx, itemID, map[string]interface{}{fieldIsActive: 0})
}
