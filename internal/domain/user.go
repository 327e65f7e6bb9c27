package domain

import "time"

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Username     string     `json:"username" dynamodbav:"username"`
	Email        string     `json:"email" dynamodbav:"email"`
	Phone        *string    `json:"phone,omitempty" dynamodbav:"phone"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Role         string     `json:"role" dynamodbav:"role"`
	Enable       bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
}
