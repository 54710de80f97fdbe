package project

import (
	"time"

	"github.com/google/uuid"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/services/column"
	"github.com/mosaicboards/mosaic/internal/services/label"
	"github.com/mosaicboards/mosaic/internal/services/task"
	"github.com/mosaicboards/mosaic/internal/services/user"
)

type Project struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Members []*Member        `db:"-" json:"members,omitempty"`
	Columns []*BoardColumn   `db:"-" json:"columns,omitempty"`
	Labels  []*label.Label   `db:"-" json:"labels,omitempty"`
}

// BoardColumn is a column with its ordered tasks resolved.
type BoardColumn struct {
	*column.Column
	Tasks []*task.Task `json:"tasks"`
}

type Member struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	ProjectID uuid.UUID        `db:"project_id" json:"project_id"`
	UserID    uuid.UUID        `db:"user_id" json:"user_id"`
	Role      authz.MemberRole `db:"role" json:"role"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`

	User *user.User `db:"-" json:"user,omitempty"`
}

// CreateProjectRequest captures payload for creating a project
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// DefaultColumns seed every new project in display order.
var DefaultColumns = []string{"To Do", "In Progress", "Done"}
