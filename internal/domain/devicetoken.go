package domain

import "time"

// Platform tags accepted on device registration.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

// DeviceToken is one push-delivery endpoint registration. The table is keyed
// by (user_id, device_token), so a given pair can exist at most once; rows
// are never hard-deleted and serve as an audit trail of past registrations.
type DeviceToken struct {
	TokenID     string    `json:"id" dynamodbav:"token_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	DeviceToken string    `json:"device_token" dynamodbav:"device_token"`
	Platform    string    `json:"platform" dynamodbav:"platform"`
	IsActive    bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RegisterTokenRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"omitempty,oneof=android ios"`
}
