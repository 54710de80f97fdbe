package project

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/authz"
)

// ProjectRepo handles database operations for projects and memberships
type ProjectRepo struct {
	db *sqlx.DB
}

func NewProjectRepo(db *sqlx.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

const projectColumns = `id, name, owner_id, created_at, updated_at`

func (r *ProjectRepo) Insert(ctx context.Context, q sqlx.ExtContext, name string, ownerID uuid.UUID) (*Project, error) {
	query := `
		INSERT INTO projects (name, owner_id)
		VALUES ($1, $2)
		RETURNING ` + projectColumns

	var p Project
	if err := sqlx.GetContext(ctx, q, &p, query, name, ownerID); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var p Project
	err := sqlx.GetContext(ctx, q, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// ListForUser returns the projects the user is a member of, newest first.
func (r *ProjectRepo) ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*Project, error) {
	query := `
		SELECT p.id, p.name, p.owner_id, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members pm ON pm.project_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.created_at DESC
		OFFSET $2 LIMIT $3
	`

	var projects []*Project
	if err := r.db.SelectContext(ctx, &projects, query, userID, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListAll returns every project; admin-only listing.
func (r *ProjectRepo) ListAll(ctx context.Context, offset, limit int) ([]*Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`

	var projects []*Project
	if err := r.db.SelectContext(ctx, &projects, query, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// MemberRepo handles database operations for project memberships. It backs
// the authorization guard's membership lookups.
type MemberRepo struct {
	db *sqlx.DB
}

func NewMemberRepo(db *sqlx.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

// GetMembership implements authz.MembershipSource. A missing row is
// (nil, nil), not an error.
func (r *MemberRepo) GetMembership(ctx context.Context, q sqlx.QueryerContext, projectID, userID uuid.UUID) (*authz.Membership, error) {
	query := `
		SELECT id, project_id, user_id, role
		FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`

	var m authz.Membership
	err := sqlx.GetContext(ctx, q, &m, query, projectID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

func (r *MemberRepo) Insert(ctx context.Context, q sqlx.ExtContext, projectID, userID uuid.UUID, role authz.MemberRole) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, $3)`,
		projectID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

// Upsert adds a MEMBER membership idempotently; an existing row (any role)
// is left untouched.
func (r *MemberRepo) Upsert(ctx context.Context, q sqlx.ExtContext, projectID, userID uuid.UUID) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, 'MEMBER')
		 ON CONFLICT (project_id, user_id) DO NOTHING`,
		projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to upsert membership: %w", err)
	}
	return nil
}

func (r *MemberRepo) ListByProject(ctx context.Context, q sqlx.QueryerContext, projectID uuid.UUID) ([]*Member, error) {
	query := `
		SELECT id, project_id, user_id, role, created_at
		FROM project_members
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	var members []*Member
	if err := sqlx.SelectContext(ctx, q, &members, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
