package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/madadgarapp/listings-api/internal/application/push"
	"github.com/madadgarapp/listings-api/internal/config"
)

// Publisher delivers pushes through SNS mobile platform endpoints. The
// device "token" registered by clients on this path is the platform
// endpoint ARN. It implements push.Gateway.
type Publisher struct {
	client *sns.Client
}

func NewPublisher(cfg *config.Config) (*Publisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: sns.NewFromConfig(awsCfg)}, nil
}

// gcmMessage mirrors the notification+data shape the Android client expects
// regardless of which gateway delivered it.
type gcmMessage struct {
	Notification gcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type gcmNotification struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	ChannelID string `json:"android_channel_id,omitempty"`
	Sound     string `json:"sound,omitempty"`
}

func (p *Publisher) Send(ctx context.Context, endpointARN string, msg push.Message) error {
	gcm, err := json.Marshal(gcmMessage{
		Notification: gcmNotification{
			Title:     msg.Title,
			Body:      msg.Body,
			ChannelID: msg.ChannelID,
			Sound:     msg.Sound,
		},
		Data: msg.Data,
	})
	if err != nil {
		return fmt.Errorf("sns: marshal GCM payload: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"default": msg.Body,
		"GCM":     string(gcm),
	})
	if err != nil {
		return fmt.Errorf("sns: marshal message: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(endpointARN),
		Message:          aws.String(string(payload)),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return fmt.Errorf("sns: publish: %w", err)
	}
	return nil
}
