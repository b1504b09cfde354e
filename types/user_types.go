package types

import (
	"context"
	"time"
)

type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type UserStore interface {
	// UpsertUser registers or refreshes a user keyed by TelegramID
	// and returns the stored row with its internal id.
	UpsertUser(ctx context.Context, user User) (*User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}
