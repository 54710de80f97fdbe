package column

import (
	"time"

	"github.com/google/uuid"
)

type Column struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	Name      string    `db:"name" json:"name"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateColumnRequest captures payload for creating a column. Position is
// optional; when omitted the column is appended at the tail.
type CreateColumnRequest struct {
	Name     string `json:"name"`
	Position *int   `json:"position,omitempty"`
}
