package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Push gateway selection values.
const (
	GatewayFCM = "fcm"
	GatewaySNS = "sns"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	S3ImageBucket string
	S3VideoBucket string
	S3PublicBase  string // base URL for public object links, e.g. CDN origin

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenDur   time.Duration

	// Push gateway. FCMServerKey is required when PushGateway is "fcm";
	// its absence is fatal at startup for the dispatcher.
	PushGateway    string
	FCMEndpoint    string
	FCMServerKey   string
	SNSRegion      string
	PushChannelID  string
	OutboxCapacity int

	AllowedOrigins []string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Sessions      string
	Items         string
	Notifications string
	DeviceTokens  string
	SendLog       string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:      getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Items:         getEnv("DYNAMO_TABLE_ITEMS", "items"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "user_notifications"),
			DeviceTokens:  getEnv("DYNAMO_TABLE_DEVICE_TOKENS", "user_device_tokens"),
			SendLog:       getEnv("DYNAMO_TABLE_SEND_LOG", "notification_send_log"),
		},

		S3ImageBucket: getEnv("S3_IMAGE_BUCKET", "item-images"),
		S3VideoBucket: getEnv("S3_VIDEO_BUCKET", "item-videos"),
		S3PublicBase:  getEnv("S3_PUBLIC_BASE_URL", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenDur:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		PushGateway:    getEnv("PUSH_GATEWAY", GatewayFCM),
		FCMEndpoint:    getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com"),
		FCMServerKey:   getEnv("FCM_SERVER_KEY", ""),
		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		PushChannelID:  getEnv("PUSH_CHANNEL_ID", "madadgar_notifications"),
		OutboxCapacity: getEnvInt("NOTIFICATION_OUTBOX_CAPACITY", 256),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
