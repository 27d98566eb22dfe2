package user

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for user profiles.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Nickname    string    `json:"nickname"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Address     string    `json:"address,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser is the registration form. ID is the identity provider's user id.
type NewUser struct {
	ID          string `json:"id"`
	Email       string `json:"email" validate:"required,email,dotted_domain"`
	Username    string `json:"username" validate:"required,min=6,username"`
	DisplayName string `json:"display_name" validate:"required,full_name"`
	Nickname    string `json:"nickname" validate:"required,nickname"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// SignUp is checked before the account is created with the identity provider.
type SignUp struct {
	Email    string `json:"email" validate:"required,email,dotted_domain"`
	Password string `json:"password" validate:"required,min=8,password"`
	Username string `json:"username" validate:"required,min=6,username"`
}

// ProfileUpdate carries the profile fields to change; nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitnil,full_name"`
	Nickname    *string `json:"nickname,omitempty" validate:"omitnil,nickname"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Address     *string `json:"address,omitempty"`
}
