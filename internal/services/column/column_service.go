package column

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/db"
	"github.com/mosaicboards/mosaic/internal/ordering"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/mosaicboards/mosaic/internal/services/activity"
)

type ColumnService struct {
	db       *sqlx.DB
	repo     *ColumnRepo
	guard    *authz.Guard
	recorder *activity.Recorder
}

func NewColumnService(dbConn *sqlx.DB, repo *ColumnRepo, guard *authz.Guard, recorder *activity.Recorder) *ColumnService {
	return &ColumnService{db: dbConn, repo: repo, guard: guard, recorder: recorder}
}

// Create adds a column to the project, at the tail by default or at the
// requested position with siblings shifted right. Out-of-range positions
// are rejected rather than clamped.
func (s *ColumnService) Create(ctx context.Context, actor *authz.Actor, projectID uuid.UUID, req *CreateColumnRequest) (*Column, error) {
	if req.Name == "" {
		return nil, perrors.NewErrBadInput("Column name is required", errors.New("empty name"))
	}

	var created *Column

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		exists, err := s.repo.ProjectExists(ctx, tx, projectID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to resolve project", err)
		}
		if !exists {
			return perrors.NewErrNotFound("Project not found", errors.New("unknown project id"))
		}

		if _, err := s.guard.Require(ctx, tx, actor, projectID, authz.ActionColumnCreate); err != nil {
			return err
		}

		scope := s.repo.Scope(tx, projectID)
		place := func(ctx context.Context, position int) error {
			created, err = s.repo.Insert(ctx, tx, projectID, req.Name, position)
			return err
		}

		if req.Position != nil {
			err = ordering.InsertAt(ctx, scope, *req.Position, place)
		} else {
			_, err = ordering.InsertAtTail(ctx, scope, place)
		}
		if err != nil {
			return perrors.Wrap("Failed to create column", err)
		}

		return s.recorder.Record(ctx, tx, actor, activity.ColumnCreated, projectID, nil, map[string]any{
			"columnId": created.ID,
			"name":     created.Name,
			"position": created.Position,
		})
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
