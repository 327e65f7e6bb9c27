package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/madadgarapp/listings-api/internal/domain"
)

// batchWriteMax is DynamoDB's BatchWriteItem request-size limit.
const batchWriteMax = 25

// NotificationRepo provides typed DynamoDB operations for the
// user_notifications table.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// BatchPut inserts all rows in 25-item chunks. The write is all-or-nothing
// from the caller's point of view: any chunk failure fails the whole call.
func (r *NotificationRepo) BatchPut(ctx context.Context, rows []domain.Notification) error {
	for start := 0; start < len(rows); start += batchWriteMax {
		end := start + batchWriteMax
		if end > len(rows) {
			end = len(rows)
		}
		requests := make([]types.WriteRequest, 0, end-start)
		for i := start; i < end; i++ {
			item, err := attributevalue.MarshalMap(rows[i])
			if err != nil {
				return fmt.Errorf("marshal notification %s: %w", rows[i].NotificationID, err)
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{r.tableName: requests},
		})
		if err != nil {
			return fmt.Errorf("batch write notifications: %w", err)
		}
		if len(out.UnprocessedItems) > 0 {
			return fmt.Errorf("batch write notifications: %d items unprocessed", len(out.UnprocessedItems[r.tableName]))
		}
	}
	return nil
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByUser queries the user_id-created_at GSI newest-first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	return r.queryByUser(ctx, userID, false)
}

// ListUnread is ListByUser restricted to is_read=false rows.
func (r *NotificationRepo) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return r.queryByUser(ctx, userID, true)
}

func (r *NotificationRepo) queryByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if unreadOnly {
		input.FilterExpression = aws.String("is_read = :f")
		input.ExpressionAttributeValues[":f"] = &types.AttributeValueMemberBOOL{Value: false}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	var notifications []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// markReadUpdates is the full mutation for marking a row read: the flag
// plus the row's update timestamp.
func markReadUpdates(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		fieldIsRead:    true,
		fieldUpdatedAt: now.UTC().Format(time.RFC3339),
	}
}

// MarkRead persists the read flag and returns the updated row.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	ue, err := buildUpdateExpr(markReadUpdates(time.Now()))
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("notification_id", notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, err
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Attributes, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Delete removes the row. Recipients may delete their own notifications;
// this is the only hard delete in the pipeline.
func (r *NotificationRepo) Delete(ctx context.Context, notificationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	return err
}
