package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/mosaicboards/mosaic/internal/authz"
)

type User struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Email        string           `db:"email" json:"email"`
	PasswordHash string           `db:"password_hash" json:"-"`
	Role         authz.GlobalRole `db:"role" json:"role"`
	AvatarURL    *string          `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// RegisterRequest captures payload for creating an account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
