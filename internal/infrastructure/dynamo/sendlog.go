package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/madadgarapp/listings-api/internal/domain"
)

// SendLogRepo provides typed DynamoDB operations for the append-only
// notification_send_log table.
type SendLogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSendLogRepo(client *dynamodb.Client, tableName string) *SendLogRepo {
	return &SendLogRepo{client: client, tableName: tableName}
}

func (r *SendLogRepo) Put(ctx context.Context, l *domain.SendLog) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal send log: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListRecent scans up to limit rows and returns them newest-first. Admin
// tooling only; the table has no query dimension beyond its ULID key.
func (r *SendLogRepo) ListRecent(ctx context.Context, limit int32) ([]domain.SendLog, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var logs []domain.SendLog
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &logs); err != nil {
		return nil, err
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].SentAt.After(logs[j].SentAt) })
	return logs, nil
}
