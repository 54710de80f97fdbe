package activity

import (
	"context"
	"fmt"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ActivityRepo struct {
	db *sqlx.DB
}

func NewActivityRepo(db *sqlx.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

type entryRow struct {
	ID        uuid.UUID  `db:"id"`
	ProjectID uuid.UUID  `db:"project_id"`
	ActorID   uuid.UUID  `db:"actor_id"`
	TaskID    *uuid.UUID `db:"task_id"`
	Action    Action     `db:"action"`
	Details   []byte     `db:"details"`
	CreatedAt time.Time  `db:"created_at"`
}

func (row *entryRow) toEntry() (*Entry, error) {
	e := &Entry{
		ID:        row.ID,
		ProjectID: row.ProjectID,
		ActorID:   row.ActorID,
		TaskID:    row.TaskID,
		Action:    row.Action,
		CreatedAt: row.CreatedAt,
	}

	if len(row.Details) > 0 {
		if err := json.Unmarshal(row.Details, &e.Details); err != nil {
			return nil, fmt.Errorf("failed to decode activity details: %w", err)
		}
	}

	return e, nil
}

// Insert appends one row through the caller's transaction so the audit
// commits with the mutation it records.
func (r *ActivityRepo) Insert(ctx context.Context, q sqlx.ExtContext, e *Entry) error {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode activity details: %w", err)
	}

	query := `
		INSERT INTO activity_log (project_id, actor_id, task_id, action, details)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := q.ExecContext(ctx, query, e.ProjectID, e.ActorID, e.TaskID, e.Action, payload); err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}

	return nil
}

// List returns a project's audit rows, newest first.
func (r *ActivityRepo) List(ctx context.Context, projectID uuid.UUID, offset, limit int) ([]*Entry, error) {
	query := `
		SELECT id, project_id, actor_id, task_id, action, details, created_at
		FROM activity_log
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`

	var rows []*entryRow
	if err := r.db.SelectContext(ctx, &rows, query, projectID, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list activity log: %w", err)
	}

	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}
