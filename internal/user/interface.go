package user

import "context"

// UserStore defines the interface for user profiles.
type UserStore interface {
	CreateUser(ctx context.Context, in NewUser) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error)
	SetVerified(ctx context.Context, userID string, verified bool) error
	SearchUsers(ctx context.Context, prefix string, limit int) ([]User, error)
}
