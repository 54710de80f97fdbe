package label

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/db"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/mosaicboards/mosaic/internal/services/activity"
)

type LabelService struct {
	db       *sqlx.DB
	repo     *LabelRepo
	guard    *authz.Guard
	recorder *activity.Recorder
}

func NewLabelService(dbConn *sqlx.DB, repo *LabelRepo, guard *authz.Guard, recorder *activity.Recorder) *LabelService {
	return &LabelService{db: dbConn, repo: repo, guard: guard, recorder: recorder}
}

// Create adds a label to the project. Names are unique per project.
func (s *LabelService) Create(ctx context.Context, actor *authz.Actor, projectID uuid.UUID, req *CreateLabelRequest) (*Label, error) {
	if req.Name == "" {
		return nil, perrors.NewErrBadInput("Label name is required", errors.New("empty name"))
	}

	var created *Label

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		exists, err := s.repo.ProjectExists(ctx, tx, projectID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to resolve project", err)
		}
		if !exists {
			return perrors.NewErrNotFound("Project not found", errors.New("unknown project id"))
		}

		if _, err := s.guard.Require(ctx, tx, actor, projectID, authz.ActionLabelCreate); err != nil {
			return err
		}

		created, err = s.repo.Insert(ctx, tx, projectID, req.Name, req.Color)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return perrors.NewErrConflict("A label with this name already exists in the project", err)
			}
			return perrors.NewErrInternalServerError("Failed to create label", err)
		}

		return s.recorder.Record(ctx, tx, actor, activity.LabelCreated, projectID, nil, map[string]any{
			"labelId": created.ID,
			"name":    created.Name,
		})
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Attach links a label to a task. Label and task must belong to the same
// project; crossing projects is a domain violation, not a missing resource.
func (s *LabelService) Attach(ctx context.Context, actor *authz.Actor, taskID, labelID uuid.UUID) error {
	return db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		projectID, l, err := s.resolvePair(ctx, tx, taskID, labelID)
		if err != nil {
			return err
		}

		if _, err := s.guard.Require(ctx, tx, actor, projectID, authz.ActionLabelAttach); err != nil {
			return err
		}

		if l.ProjectID != projectID {
			return perrors.NewErrForbidden("Label belongs to a different project", errors.New("cross-project label attach"))
		}

		attached, err := s.repo.Attach(ctx, tx, taskID, labelID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to attach label", err)
		}
		if !attached {
			return perrors.NewErrBadInput("Label is already attached to this task", errors.New("duplicate task label"))
		}

		return s.recorder.Record(ctx, tx, actor, activity.LabelAddedToTask, projectID, &taskID, map[string]any{
			"labelId": labelID,
		})
	})
}

// Detach removes a label from a task.
func (s *LabelService) Detach(ctx context.Context, actor *authz.Actor, taskID, labelID uuid.UUID) error {
	return db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		projectID, l, err := s.resolvePair(ctx, tx, taskID, labelID)
		if err != nil {
			return err
		}

		if _, err := s.guard.Require(ctx, tx, actor, projectID, authz.ActionLabelDetach); err != nil {
			return err
		}

		if l.ProjectID != projectID {
			return perrors.NewErrForbidden("Label belongs to a different project", errors.New("cross-project label detach"))
		}

		detached, err := s.repo.Detach(ctx, tx, taskID, labelID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to detach label", err)
		}
		if !detached {
			return perrors.NewErrBadInput("Label is not attached to this task", errors.New("missing task label"))
		}

		return s.recorder.Record(ctx, tx, actor, activity.LabelRemovedFromTask, projectID, &taskID, map[string]any{
			"labelId": labelID,
		})
	})
}

// resolvePair resolves the task's project and the label row. Lookup misses
// are NotFound before any authorization runs.
func (s *LabelService) resolvePair(ctx context.Context, tx *sqlx.Tx, taskID, labelID uuid.UUID) (uuid.UUID, *Label, error) {
	projectID, found, err := s.repo.TaskProject(ctx, tx, taskID)
	if err != nil {
		return uuid.Nil, nil, perrors.NewErrInternalServerError("Failed to resolve task", err)
	}
	if !found {
		return uuid.Nil, nil, perrors.NewErrNotFound("Task not found", errors.New("unknown task id"))
	}

	l, err := s.repo.GetByID(ctx, tx, labelID)
	if err != nil {
		return uuid.Nil, nil, perrors.NewErrInternalServerError("Failed to resolve label", err)
	}
	if l == nil {
		return uuid.Nil, nil, perrors.NewErrNotFound("Label not found", errors.New("unknown label id"))
	}

	return projectID, l, nil
}
