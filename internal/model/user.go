package model

import (
	"errors"
	"time"
)

// User represents an account. Credential handling lives in the request
// layer; this core only consumes already-authenticated user IDs.
type User struct {
	ID          int64     `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName *string   `db:"display_name" json:"display_name"`
	Bio         *string   `db:"bio" json:"bio"`
	AvatarURL   *string   `db:"avatar_url" json:"avatar_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the compact author shape attached to notes, comments
// and follow listings.
type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	DisplayName *string `db:"display_name" json:"display_name"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url"`
}

// ErrUserNotFound is returned when a user cannot be found.
var ErrUserNotFound = errors.New("user not found")
