package task

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/ordering"
)

type TaskRepo struct {
	db *sqlx.DB
}

func NewTaskRepo(db *sqlx.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = `id, column_id, title, description, status, position, creator_id, assignee_id, due_date, created_at, updated_at`

func (r *TaskRepo) GetByID(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var t Task
	err := sqlx.GetContext(ctx, q, &t, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// ResolveProject resolves a task to its owning project through its column.
// found is false when the task does not exist.
func (r *TaskRepo) ResolveProject(ctx context.Context, q sqlx.QueryerContext, taskID uuid.UUID) (projectID uuid.UUID, found bool, err error) {
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

// ColumnProject resolves a column to its owning project.
func (r *TaskRepo) ColumnProject(ctx context.Context, q sqlx.QueryerContext, columnID uuid.UUID) (projectID uuid.UUID, found bool, err error) {
	err = sqlx.GetContext(ctx, q, &projectID, `SELECT project_id FROM columns WHERE id = $1`, columnID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to resolve column project: %w", err)
	}
	return projectID, true, nil
}

func (r *TaskRepo) UserExists(ctx context.Context, q sqlx.QueryerContext, userID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

func (r *TaskRepo) Insert(ctx context.Context, q sqlx.ExtContext, columnID uuid.UUID, req *CreateTaskRequest, creatorID uuid.UUID, position int) (*Task, error) {
	query := `
		INSERT INTO tasks (column_id, title, description, position, creator_id, assignee_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + taskColumns

	var t Task
	err := sqlx.GetContext(ctx, q, &t, query, columnID, req.Title, req.Description, position, creatorID, req.AssigneeID, req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return &t, nil
}

// Update modifies only the provided task fields via a dynamic SET clause.
func (r *TaskRepo) Update(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, req *UpdateTaskRequest) (*Task, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", len(args)+1))
		args = append(args, *req.Title)
	}

	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *req.Description)
	}

	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *req.Status)
	}

	if req.DueDate != nil {
		setParts = append(setParts, fmt.Sprintf("due_date = $%d", len(args)+1))
		args = append(args, *req.DueDate)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, q, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $%d
		RETURNING `+taskColumns, strings.Join(setParts, ", "), len(args))

	var t Task
	err := sqlx.GetContext(ctx, q, &t, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepo) UpdateAssignee(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, assigneeID *uuid.UUID) (*Task, error) {
	query := `
		UPDATE tasks
		SET assignee_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + taskColumns

	var t Task
	err := sqlx.GetContext(ctx, q, &t, query, assigneeID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update assignee: %w", err)
	}
	return &t, nil
}

// Place writes a task's column and position; used as the final step of a
// move.
func (r *TaskRepo) Place(ctx context.Context, q sqlx.ExtContext, id, columnID uuid.UUID, position int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE tasks SET column_id = $1, position = $2, updated_at = NOW() WHERE id = $3`,
		columnID, position, id)
	if err != nil {
		return fmt.Errorf("failed to place task: %w", err)
	}
	return nil
}

func (r *TaskRepo) ListByProject(ctx context.Context, q sqlx.QueryerContext, projectID uuid.UUID) ([]*Task, error) {
	query := `
		SELECT t.id, t.column_id, t.title, t.description, t.status, t.position,
		       t.creator_id, t.assignee_id, t.due_date, t.created_at, t.updated_at
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		WHERE c.project_id = $1
		ORDER BY t.position ASC
	`

	var tasks []*Task
	if err := sqlx.SelectContext(ctx, q, &tasks, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepo) InsertComment(ctx context.Context, q sqlx.ExtContext, taskID, authorID uuid.UUID, body string) (*Comment, error) {
	query := `
		INSERT INTO comments (task_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, task_id, author_id, body, created_at
	`

	var c Comment
	err := sqlx.GetContext(ctx, q, &c, query, taskID, authorID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	return &c, nil
}

func (r *TaskRepo) ListComments(ctx context.Context, q sqlx.QueryerContext, taskID uuid.UUID) ([]*Comment, error) {
	query := `
		SELECT id, task_id, author_id, body, created_at
		FROM comments
		WHERE task_id = $1
		ORDER BY created_at ASC
	`

	var comments []*Comment
	if err := sqlx.SelectContext(ctx, q, &comments, query, taskID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Scope returns the ordered collection of a column's tasks. A non-nil
// exclude hides the moving task from counts and shifts so the engine only
// ever renumbers siblings.
func (r *TaskRepo) Scope(q sqlx.ExtContext, columnID uuid.UUID, exclude uuid.UUID) ordering.Collection {
	return &columnScope{q: q, columnID: columnID, exclude: exclude}
}

type columnScope struct {
	q        sqlx.ExtContext
	columnID uuid.UUID
	exclude  uuid.UUID
}

func (s *columnScope) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, s.q, &count,
		`SELECT COUNT(*) FROM tasks WHERE column_id = $1 AND id != $2`,
		s.columnID, s.exclude)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func (s *columnScope) ShiftRight(ctx context.Context, from int) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET position = position + 1, updated_at = NOW() WHERE column_id = $1 AND position >= $2 AND id != $3`,
		s.columnID, from, s.exclude)
	if err != nil {
		return fmt.Errorf("failed to shift tasks right: %w", err)
	}
	return nil
}

func (s *columnScope) ShiftLeft(ctx context.Context, after int) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET position = position - 1, updated_at = NOW() WHERE column_id = $1 AND position > $2 AND id != $3`,
		s.columnID, after, s.exclude)
	if err != nil {
		return fmt.Errorf("failed to shift tasks left: %w", err)
	}
	return nil
}
