package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/mosaicboards/mosaic/internal/services/label"
	"github.com/mosaicboards/mosaic/internal/services/user"
)

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusArchived   Status = "ARCHIVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchived:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ColumnID    uuid.UUID  `db:"column_id" json:"column_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Status      Status     `db:"status" json:"status"`
	Position    int        `db:"position" json:"position"`
	CreatorID   uuid.UUID  `db:"creator_id" json:"creator_id"`
	AssigneeID  *uuid.UUID `db:"assignee_id" json:"assignee_id,omitempty"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	Creator  *user.User     `db:"-" json:"creator,omitempty"`
	Assignee *user.User     `db:"-" json:"assignee,omitempty"`
	Labels   []*label.Label `db:"-" json:"labels,omitempty"`
	Comments []*Comment     `db:"-" json:"comments,omitempty"`
}

type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TaskID    uuid.UUID `db:"task_id" json:"task_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Author *user.User `db:"-" json:"author,omitempty"`
}

// CreateTaskRequest captures payload for creating a task. New tasks always
// join the tail of their column.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest captures payload for updating task fields. Position and
// column are changed through move, never here.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type MoveTaskRequest struct {
	ToColumnID uuid.UUID `json:"to_column_id"`
	ToPosition int       `json:"to_position"`
}

// AssignTaskRequest carries the new assignee; nil clears the assignment.
type AssignTaskRequest struct {
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

type CommentRequest struct {
	Body string `json:"body"`
}
