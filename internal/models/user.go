package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserDB represents a user record in the database.
// The password hash never leaves the repository layer.
type UserDB struct {
	UserID       uuid.UUID `json:"id" db:"user_id"`            // Primary key
	Username     string    `json:"username" db:"username"`     // Unique username
	PasswordHash string    `json:"-" db:"password_hash"`       // bcrypt hash, never serialized
	Role         string    `json:"role" db:"role"`             // "user" or "admin"
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // Creation timestamp
}
