package domain

import "time"

// Notification types.
const (
	NotificationTypeNewListing  = "new_listing"
	NotificationTypePostDeleted = "post_deleted"
	NotificationTypeSystemAlert = "system_alert"
)

// Payload keys shared by the event triggers and the push data section.
const (
	PayloadKeyItemID         = "item_id"
	PayloadKeyCategory       = "category"
	PayloadKeySubcategory    = "subcategory"
	PayloadKeyLocation       = "location"
	PayloadKeyTitle          = "title"
	PayloadKeyUploaderID     = "uploader_id"
	PayloadKeyDeletionReason = "deletion_reason"
	PayloadKeyDeletedAt      = "deleted_at"
)

// Notification is one in-app notification row: exactly one recipient per row.
type Notification struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id"`
	UserID         string            `json:"user_id" dynamodbav:"user_id"`
	Type           string            `json:"type" dynamodbav:"type"`
	Title          string            `json:"title" dynamodbav:"title"`
	Body           string            `json:"body" dynamodbav:"body"`
	Payload        map[string]string `json:"payload,omitempty" dynamodbav:"payload"`
	IsRead         bool              `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time         `json:"updated" dynamodbav:"updated_at"`
}

// Equal compares notifications by identifier only. Rows without an assigned
// identifier are never equal to anything, including themselves.
func (n Notification) Equal(other Notification) bool {
	return n.NotificationID != "" && n.NotificationID == other.NotificationID
}
