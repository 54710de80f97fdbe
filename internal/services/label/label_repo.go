package label

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func taskIDArray(ids []uuid.UUID) pq.StringArray {
	arr := make(pq.StringArray, len(ids))
	for i, id := range ids {
		arr[i] = id.String()
	}
	return arr
}

type LabelRepo struct {
	db *sqlx.DB
}

func NewLabelRepo(db *sqlx.DB) *LabelRepo {
	return &LabelRepo{db: db}
}

const labelColumns = `id, project_id, name, color, created_at`

func (r *LabelRepo) Insert(ctx context.Context, q sqlx.ExtContext, projectID uuid.UUID, name, color string) (*Label, error) {
	query := `
		INSERT INTO labels (project_id, name, color)
		VALUES ($1, $2, $3)
		RETURNING ` + labelColumns

	var l Label
	if err := sqlx.GetContext(ctx, q, &l, query, projectID, name, color); err != nil {
		return nil, fmt.Errorf("failed to insert label: %w", err)
	}
	return &l, nil
}

func (r *LabelRepo) GetByID(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels WHERE id = $1`

	var l Label
	err := sqlx.GetContext(ctx, q, &l, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get label: %w", err)
	}
	return &l, nil
}

func (r *LabelRepo) ListByProject(ctx context.Context, q sqlx.QueryerContext, projectID uuid.UUID) ([]*Label, error) {
	query := `SELECT ` + labelColumns + ` FROM labels WHERE project_id = $1 ORDER BY name ASC`

	var labels []*Label
	if err := sqlx.SelectContext(ctx, q, &labels, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

type taskLabelRow struct {
	TaskID uuid.UUID `db:"task_id"`
	Label
}

// MapByTasks returns the labels attached to each of the given tasks.
func (r *LabelRepo) MapByTasks(ctx context.Context, q sqlx.QueryerContext, taskIDs []uuid.UUID) (map[uuid.UUID][]*Label, error) {
	result := make(map[uuid.UUID][]*Label)
	if len(taskIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT tl.task_id, l.id, l.project_id, l.name, l.color, l.created_at
		FROM task_labels tl
		JOIN labels l ON l.id = tl.label_id
		WHERE tl.task_id = ANY($1::uuid[])
		ORDER BY l.name ASC
	`

	var rows []*taskLabelRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, taskIDArray(taskIDs)); err != nil {
		return nil, fmt.Errorf("failed to list task labels: %w", err)
	}

	for _, row := range rows {
		l := row.Label
		result[row.TaskID] = append(result[row.TaskID], &l)
	}

	return result, nil
}

func (r *LabelRepo) Attach(ctx context.Context, q sqlx.ExtContext, taskID, labelID uuid.UUID) (bool, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO task_labels (task_id, label_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		taskID, labelID)
	if err != nil {
		return false, fmt.Errorf("failed to attach label: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *LabelRepo) Detach(ctx context.Context, q sqlx.ExtContext, taskID, labelID uuid.UUID) (bool, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM task_labels WHERE task_id = $1 AND label_id = $2`,
		taskID, labelID)
	if err != nil {
		return false, fmt.Errorf("failed to detach label: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *LabelRepo) ProjectExists(ctx context.Context, q sqlx.QueryerContext, projectID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID)
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return exists, nil
}

// TaskProject resolves a task to its project through its column. found is
// false when the task does not exist.
func (r *LabelRepo) TaskProject(ctx context.Context, q sqlx.QueryerContext, taskID uuid.UUID) (projectID uuid.UUID, found bool, err error) {
	query := `
		SELECT c.project_id
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		WHERE t.id = $1
	`

	err = sqlx.GetContext(ctx, q, &projectID, query, taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to resolve task project: %w", err)
	}
	return projectID, true, nil
}
