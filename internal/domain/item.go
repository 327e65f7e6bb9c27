package domain

import "time"

// Item is a marketplace listing. Deletion is a soft delete: IsActive flips
// to 0 and the row stays behind for history. IsActive is numeric so it can
// key the is_active-created_at GSI.
type Item struct {
	ItemID        string     `json:"id" dynamodbav:"item_id"`
	Title         string     `json:"title" dynamodbav:"title"`
	Description   string     `json:"description" dynamodbav:"description"`
	MainCategory  string     `json:"main_category" dynamodbav:"main_category"`
	SubCategory   string     `json:"sub_category" dynamodbav:"sub_category"`
	Location      string     `json:"location" dynamodbav:"location"`
	Latitude      *float64   `json:"latitude,omitempty" dynamodbav:"latitude"`
	Longitude     *float64   `json:"longitude,omitempty" dynamodbav:"longitude"`
	ContactNumber string     `json:"contact_number" dynamodbav:"contact_number"`
	Contact1      *string    `json:"contact1,omitempty" dynamodbav:"contact1"`
	Contact2      *string    `json:"contact2,omitempty" dynamodbav:"contact2"`
	OwnerID       string     `json:"owner_id" dynamodbav:"owner_id"`
	ImageURLs     []string   `json:"image_urls" dynamodbav:"image_urls"`
	VideoURL      *string    `json:"video_url,omitempty" dynamodbav:"video_url"`
	IsActive      int        `json:"is_active" dynamodbav:"is_active"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" dynamodbav:"expires_at"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateItemRequest struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	MainCategory  string   `json:"main_category" validate:"required"`
	SubCategory   string   `json:"sub_category"`
	Location      string   `json:"location" validate:"required"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ContactNumber string   `json:"contact_number" validate:"required"`
	Contact1      *string  `json:"contact1"`
	Contact2      *string  `json:"contact2"`
	ImageURLs     []string `json:"image_urls"`
	VideoURL      *string  `json:"video_url"`
	ExpiresAt     *string  `json:"expires_at"` // RFC3339
}
