package invitation

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRevoked  Status = "REVOKED"
)

type Invitation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	Email     string    `db:"email" json:"email"`
	Token     string    `db:"token" json:"token"`
	Status    Status    `db:"status" json:"status"`
	InvitedBy uuid.UUID `db:"invited_by" json:"invited_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InviteRequest captures payload for inviting a member by email
type InviteRequest struct {
	Email string `json:"email"`
}

// AcceptRequest carries the opaque invitation token
type AcceptRequest struct {
	Token string `json:"token"`
}
