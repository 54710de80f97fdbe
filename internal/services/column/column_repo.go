package column

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/ordering"
)

type ColumnRepo struct {
	db *sqlx.DB
}

func NewColumnRepo(db *sqlx.DB) *ColumnRepo {
	return &ColumnRepo{db: db}
}

const columnColumns = `id, project_id, name, position, created_at, updated_at`

func (r *ColumnRepo) GetByID(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*Column, error) {
	query := `SELECT ` + columnColumns + ` FROM columns WHERE id = $1`

	var c Column
	err := sqlx.GetContext(ctx, q, &c, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get column: %w", err)
	}
	return &c, nil
}

func (r *ColumnRepo) ListByProject(ctx context.Context, q sqlx.QueryerContext, projectID uuid.UUID) ([]*Column, error) {
	query := `SELECT ` + columnColumns + ` FROM columns WHERE project_id = $1 ORDER BY position ASC`

	var cols []*Column
	if err := sqlx.SelectContext(ctx, q, &cols, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	return cols, nil
}

func (r *ColumnRepo) Insert(ctx context.Context, q sqlx.ExtContext, projectID uuid.UUID, name string, position int) (*Column, error) {
	query := `
		INSERT INTO columns (project_id, name, position)
		VALUES ($1, $2, $3)
		RETURNING ` + columnColumns

	var c Column
	if err := sqlx.GetContext(ctx, q, &c, query, projectID, name, position); err != nil {
		return nil, fmt.Errorf("failed to insert column: %w", err)
	}
	return &c, nil
}

func (r *ColumnRepo) ProjectExists(ctx context.Context, q sqlx.QueryerContext, projectID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID)
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return exists, nil
}

// Scope returns the ordered collection of a project's columns, running
// against q. The position unique is deferred, so range shifts are single
// statements.
func (r *ColumnRepo) Scope(q sqlx.ExtContext, projectID uuid.UUID) ordering.Collection {
	return &projectScope{q: q, projectID: projectID}
}

type projectScope struct {
	q         sqlx.ExtContext
	projectID uuid.UUID
}

func (s *projectScope) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, s.q, &count, `SELECT COUNT(*) FROM columns WHERE project_id = $1`, s.projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to count columns: %w", err)
	}
	return count, nil
}

func (s *projectScope) ShiftRight(ctx context.Context, from int) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE columns SET position = position + 1, updated_at = NOW() WHERE project_id = $1 AND position >= $2`,
		s.projectID, from)
	if err != nil {
		return fmt.Errorf("failed to shift columns right: %w", err)
	}
	return nil
}

func (s *projectScope) ShiftLeft(ctx context.Context, after int) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE columns SET position = position - 1, updated_at = NOW() WHERE project_id = $1 AND position > $2`,
		s.projectID, after)
	if err != nil {
		return fmt.Errorf("failed to shift columns left: %w", err)
	}
	return nil
}
