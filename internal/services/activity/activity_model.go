package activity

import (
	"time"

	"github.com/google/uuid"
)

// Action tags the kind of mutation an audit row records.
type Action string

const (
	ProjectCreated       Action = "PROJECT_CREATED"
	ColumnCreated        Action = "COLUMN_CREATED"
	TaskCreated          Action = "TASK_CREATED"
	TaskUpdated          Action = "TASK_UPDATED"
	TaskMoved            Action = "TASK_MOVED"
	TaskAssigned         Action = "TASK_ASSIGNED"
	CommentAdded         Action = "COMMENT_ADDED"
	MemberInvited        Action = "MEMBER_INVITED"
	InviteAccepted       Action = "INVITE_ACCEPTED"
	InviteRevoked        Action = "INVITE_REVOKED"
	LabelCreated         Action = "LABEL_CREATED"
	LabelAddedToTask     Action = "LABEL_ADDED_TO_TASK"
	LabelRemovedFromTask Action = "LABEL_REMOVED_FROM_TASK"
)

// Entry is one immutable audit row. Details is informational only and is
// never read back by business logic.
type Entry struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	ProjectID uuid.UUID      `db:"project_id" json:"project_id"`
	ActorID   uuid.UUID      `db:"actor_id" json:"actor_id"`
	TaskID    *uuid.UUID     `db:"task_id" json:"task_id,omitempty"`
	Action    Action         `db:"action" json:"action"`
	Details   map[string]any `db:"-" json:"details"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
