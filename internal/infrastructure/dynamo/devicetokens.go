package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/madadgarapp/listings-api/internal/domain"
)

// DeviceTokenRepo provides typed DynamoDB operations for the
// user_device_tokens table. The table is keyed by (user_id, device_token),
// so the registry's "at most one row per pair" invariant is enforced by the
// store itself rather than by readers.
type DeviceTokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDeviceTokenRepo(client *dynamodb.Client, tableName string) *DeviceTokenRepo {
	return &DeviceTokenRepo{client: client, tableName: tableName}
}

// PutNew inserts a registration row, failing with domain.ErrConflict when the
// (user, token) pair already exists. Conflicts are detected by the store's
// conditional write, not by inspecting error message text.
func (r *DeviceTokenRepo) PutNew(ctx context.Context, t *domain.DeviceToken) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal device token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id) AND attribute_not_exists(device_token)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("device token already registered: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *DeviceTokenRepo) Get(ctx context.Context, userID, token string) (*domain.DeviceToken, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "device_token", token),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("device token not found: %w", domain.ErrNotFound)
	}
	var t domain.DeviceToken
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SetActive flips the active flag on one (user, token) row.
func (r *DeviceTokenRepo) SetActive(ctx context.Context, userID, token string, active bool) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldIsActive:  active,
		fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("user_id", userID, "device_token", token),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// DeactivateOthers marks every active token of userID inactive except keep.
// Per-row update failures are logged and skipped.
func (r *DeviceTokenRepo) DeactivateOthers(ctx context.Context, userID, keep string) error {
	rows, err := r.listByUser(ctx, userID, true)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.DeviceToken == keep {
			continue
		}
		if err := r.SetActive(ctx, userID, row.DeviceToken, false); err != nil {
			slog.Warn("failed to deactivate device token", "user_id", userID, "err", err)
		}
	}
	return nil
}

// DeactivateAll marks every active token of userID inactive.
func (r *DeviceTokenRepo) DeactivateAll(ctx context.Context, userID string) error {
	return r.DeactivateOthers(ctx, userID, "")
}

// ListActiveByUsers returns the active rows for each of userIDs, in the
// order the ids are given (registry-scan order for the dispatcher).
func (r *DeviceTokenRepo) ListActiveByUsers(ctx context.Context, userIDs []string) ([]domain.DeviceToken, error) {
	var tokens []domain.DeviceToken
	for _, uid := range userIDs {
		rows, err := r.listByUser(ctx, uid, true)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, rows...)
	}
	return tokens, nil
}

// ListActiveUserIDs scans for distinct users holding at least one active
// registration. This is the device-registry source for recipient resolution.
func (r *DeviceTokenRepo) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(r.tableName),
			ProjectionExpression: aws.String("user_id"),
			FilterExpression:     aws.String("is_active = :t"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t": &types.AttributeValueMemberBOOL{Value: true},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			if v, ok := item["user_id"].(*types.AttributeValueMemberS); ok {
				if _, dup := seen[v.Value]; !dup {
					seen[v.Value] = struct{}{}
					ids = append(ids, v.Value)
				}
			}
		}
		if out.LastEvaluatedKey == nil {
			return ids, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *DeviceTokenRepo) listByUser(ctx context.Context, userID string, activeOnly bool) ([]domain.DeviceToken, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	}
	if activeOnly {
		input.FilterExpression = aws.String("is_active = :t")
		input.ExpressionAttributeValues[":t"] = &types.AttributeValueMemberBOOL{Value: true}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	var rows []domain.DeviceToken
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
