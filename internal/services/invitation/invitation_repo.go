package invitation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type InvitationRepo struct {
	db *sqlx.DB
}

func NewInvitationRepo(db *sqlx.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

const invitationColumns = `id, project_id, email, token, status, invited_by, created_at, updated_at`

func (r *InvitationRepo) Insert(ctx context.Context, q sqlx.ExtContext, projectID uuid.UUID, email, token string, invitedBy uuid.UUID) (*Invitation, error) {
	query := `
		INSERT INTO invitations (project_id, email, token, invited_by)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + invitationColumns

	var inv Invitation
	if err := sqlx.GetContext(ctx, q, &inv, query, projectID, email, token, invitedBy); err != nil {
		return nil, fmt.Errorf("failed to insert invitation: %w", err)
	}
	return &inv, nil
}

func (r *InvitationRepo) GetByID(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`

	var inv Invitation
	err := sqlx.GetContext(ctx, q, &inv, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return &inv, nil
}

func (r *InvitationRepo) GetByToken(ctx context.Context, q sqlx.QueryerContext, token string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`

	var inv Invitation
	err := sqlx.GetContext(ctx, q, &inv, query, token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return &inv, nil
}

// Transition moves the invitation from one status to another. The from
// status is part of the predicate so each transition fires at most once.
func (r *InvitationRepo) Transition(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, from, to Status) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE invitations SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition invitation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *InvitationRepo) ProjectExists(ctx context.Context, q sqlx.QueryerContext, projectID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID)
	if err != nil {
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	return exists, nil
}
