package activity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/perrors"
)

// Recorder appends audit rows. A failed append fails the enclosing
// transaction: no mutation commits without its log row.
type Recorder struct {
	repo *ActivityRepo
}

func NewRecorder(repo *ActivityRepo) *Recorder {
	return &Recorder{repo: repo}
}

func (rec *Recorder) Record(ctx context.Context, q sqlx.ExtContext, actor *authz.Actor, action Action, projectID uuid.UUID, taskID *uuid.UUID, details map[string]any) error {
	return rec.repo.Insert(ctx, q, &Entry{
		ProjectID: projectID,
		ActorID:   actor.UserID,
		TaskID:    taskID,
		Action:    action,
		Details:   details,
	})
}

// ActivityService serves the read side of the audit trail.
type ActivityService struct {
	repo  *ActivityRepo
	guard *authz.Guard
	db    *sqlx.DB
}

func NewActivityService(repo *ActivityRepo, guard *authz.Guard, db *sqlx.DB) *ActivityService {
	return &ActivityService{repo: repo, guard: guard, db: db}
}

func (s *ActivityService) List(ctx context.Context, actor *authz.Actor, projectID uuid.UUID, offset, limit int) ([]*Entry, error) {
	if _, err := s.guard.Require(ctx, s.db, actor, projectID, authz.ActionActivityView); err != nil {
		return nil, err
	}

	entries, err := s.repo.List(ctx, projectID, offset, limit)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list activity log", err)
	}

	return entries, nil
}
