package task

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
	"github.com/mosaicboards/mosaic/internal/services/label"
	"github.com/mosaicboards/mosaic/internal/services/user"
)

type TaskService struct {
	db       *sqlx.DB
	repo     *TaskRepo
	guard    *authz.Guard
	recorder *activity.Recorder
	members  authz.MembershipSource
	users    *user.UserRepo
	labels   *label.LabelRepo
}

func NewTaskService(dbConn *sqlx.DB, repo *TaskRepo, guard *authz.Guard, recorder *activity.Recorder, members authz.MembershipSource, users *user.UserRepo, labels *label.LabelRepo) *TaskService {
	return &TaskService{
		db:       dbConn,
		repo:     repo,
		guard:    guard,
		recorder: recorder,
		members:  members,
		users:    users,
		labels:   labels,
	}
}

// Create appends a task at the tail of the column. An assignee given at
// creation follows the same member-or-admin rule as assignTask.
func (s *TaskService) Create(ctx context.Context, actor *authz.Actor, columnID uuid.UUID, req *CreateTaskRequest) (*Task, error) {
	if req.Title == "" {
		return nil, perrors.NewErrBadInput("Task title is required", errors.New("empty title"))
	}

	var created *Task

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		projectID, found, err := s.repo.ColumnProject(ctx, tx, columnID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to resolve column", err)
		}
		if !found {
			return perrors.NewErrNotFound("Column not found", errors.New("unknown column id"))
		}

		if _, err := s.guard.Require(ctx, tx, actor, projectID, authz.ActionTaskCreate); err != nil {
			return err
		}

		if req.AssigneeID != nil {
			if err := s.checkAssignee(ctx, tx, actor, projectID, *req.AssigneeID); err != nil {
				return err
			}
		}

		scope := s.repo.Scope(tx, columnID, uuid.Nil)
		_, err = ordering.InsertAtTail(ctx, scope, func(ctx context.Context, position int) error {
			created, err = s.repo.Insert(ctx, tx, columnID, req, actor.UserID, position)
			return err
		})
		if err != nil {
			return perrors.Wrap("Failed to create task", err)
		}

		return s.recorder.Record(ctx, tx, actor, activity.TaskCreated, projectID, &created.ID, map[string]any{
			"columnId": columnID,
			"title":    created.Title,
			"position": created.Position,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.hydrate(ctx, created)
}

// Update changes task fields. Positions never change here; that is move's
// job.
func (s *TaskService) Update(ctx context.Context, actor *authz.Actor, taskID uuid.UUID, req *UpdateTaskRequest) (*Task, error) {
	if req.Title != nil && *req.Title == "" {
		return nil, perrors.NewErrBadInput("Task title cannot be empty", errors.New("empty title"))
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, perrors.NewErrBadInput("Invalid task status", errors.New("unknown status "+string(*req.Status)))
	}

	var updated *Task

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		projectID, found, err := s.repo.ResolveProject(ctx, tx, taskID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to resolve task", err)
		}
		if !found {
			return perrors.NewErrNotFound("Task not found", errors.New("unknown task id"))
		}

		if _, err := s.guard.Require(ctx, tx, actor, projectID, authz.ActionTaskUpdate); err != nil {
			return err
		}

		updated, err = s.repo.Update(ctx, tx, taskID, req)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to update task", err)
		}

		return s.recorder.Record(ctx, tx, actor, activity.TaskUpdated, projectID, &taskID, changedFields(req))
	})
	if err != nil {
		return nil, err
	}

	return s.hydrate(ctx, updated)
}

// Move relocates a task to a column at a position. The whole relocation,
// including both columns' renumbering and the audit row, is one
// transaction; a failure at any step leaves both orderings untouched.
func (s *TaskService) Move(ctx context.Context, actor *authz.Actor, taskID uuid.UUID, req *MoveTaskRequest) (*Task, error) {
	if req.ToPosition < 1 {
		return nil, perrors.NewErrBadInput("Position must be a positive integer", errors.New("non-positive position"))
	}

	var moved *Task

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		t, err := s.repo.GetByID(ctx, tx, taskID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to resolve task", err)
		}
		if t == nil {
			return perrors.NewErrNotFound("Task not found", errors.New("unknown task id"))
		}

		sourceProject, found, err := s.repo.ColumnProject(ctx, tx, t.ColumnID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to resolve source column", err)
		}
		if !found {
			return perrors.NewErrNotFound("Column not found", errors.New("unknown source column"))
		}

		targetProject, found, err := s.repo.ColumnProject(ctx, tx, req.ToColumnID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to resolve target column", err)
		}
		if !found {
			return perrors.NewErrNotFound("Column not found", errors.New("unknown target column"))
		}

		// A task never crosses projects by moving.
		if sourceProject != targetProject {
			return perrors.NewErrForbidden("Cannot move a task to a different project", errors.New("cross-project move"))
		}

		if _, err := s.guard.Require(ctx, tx, actor, sourceProject, authz.ActionTaskMove); err != nil {
			return err
		}

		source := s.repo.Scope(tx, t.ColumnID, taskID)
		target := s.repo.Scope(tx, req.ToColumnID, taskID)

		err = ordering.Move(ctx, source, target, t.Position, req.ToPosition, func(ctx context.Context, position int) error {
			return s.repo.Place(ctx, tx, taskID, req.ToColumnID, position)
		})
		if err != nil {
			return perrors.Wrap("Failed to move task", err)
		}

		moved, err = s.repo.GetByID(ctx, tx, taskID)
		if err != nil || moved == nil {
			return perrors.NewErrInternalServerError("Failed to reload moved task", err)
		}

		return s.recorder.Record(ctx, tx, actor, activity.TaskMoved, sourceProject, &taskID, map[string]any{
			"fromColumnId": t.ColumnID,
			"toColumnId":   req.ToColumnID,
			"toPosition":   req.ToPosition,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.hydrate(ctx, moved)
}

// Assign sets or clears the task's assignee. A non-member assignee is
// forbidden unless the actor holds the global ADMIN role.
func (s *TaskService) Assign(ctx context.Context, actor *authz.Actor, taskID uuid.UUID, req *AssignTaskRequest) (*Task, error) {
	var updated *Task

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		projectID, found, err := s.repo.ResolveProject(ctx, tx, taskID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to resolve task", err)
		}
		if !found {
			return perrors.NewErrNotFound("Task not found", errors.New("unknown task id"))
		}

		if _, err := s.guard.Require(ctx, tx, actor, projectID, authz.ActionTaskAssign); err != nil {
			return err
		}

		if req.AssigneeID != nil {
			if err := s.checkAssignee(ctx, tx, actor, projectID, *req.AssigneeID); err != nil {
				return err
			}
		}

		updated, err = s.repo.UpdateAssignee(ctx, tx, taskID, req.AssigneeID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to assign task", err)
		}

		details := map[string]any{"assigneeId": nil}
		if req.AssigneeID != nil {
			details["assigneeId"] = *req.AssigneeID
		}

		return s.recorder.Record(ctx, tx, actor, activity.TaskAssigned, projectID, &taskID, details)
	})
	if err != nil {
		return nil, err
	}

	return s.hydrate(ctx, updated)
}

// Comment adds a comment to the task.
func (s *TaskService) Comment(ctx context.Context, actor *authz.Actor, taskID uuid.UUID, req *CommentRequest) (*Comment, error) {
	if req.Body == "" {
		return nil, perrors.NewErrBadInput("Comment body is required", errors.New("empty body"))
	}

	var created *Comment

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		projectID, found, err := s.repo.ResolveProject(ctx, tx, taskID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to resolve task", err)
		}
		if !found {
			return perrors.NewErrNotFound("Task not found", errors.New("unknown task id"))
		}

		if _, err := s.guard.Require(ctx, tx, actor, projectID, authz.ActionTaskComment); err != nil {
			return err
		}

		created, err = s.repo.InsertComment(ctx, tx, taskID, actor.UserID, req.Body)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to add comment", err)
		}

		return s.recorder.Record(ctx, tx, actor, activity.CommentAdded, projectID, &taskID, map[string]any{
			"commentId": created.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	if users, uerr := s.users.MapByIDs(ctx, []uuid.UUID{created.AuthorID}); uerr == nil {
		created.Author = users[created.AuthorID]
	}

	return created, nil
}

// checkAssignee enforces the membership rule for assignments. Admin actors
// may assign anyone that exists; everyone else only genuine members.
func (s *TaskService) checkAssignee(ctx context.Context, tx *sqlx.Tx, actor *authz.Actor, projectID, assigneeID uuid.UUID) error {
	exists, err := s.repo.UserExists(ctx, tx, assigneeID)
	if err != nil {
		return perrors.NewErrInternalServerError("Failed to resolve assignee", err)
	}
	if !exists {
		return perrors.NewErrNotFound("Assignee not found", errors.New("unknown assignee id"))
	}

	if actor.IsAdmin() {
		return nil
	}

	membership, err := s.members.GetMembership(ctx, tx, projectID, assigneeID)
	if err != nil {
		return perrors.NewErrInternalServerError("Failed to resolve assignee membership", err)
	}
	if membership == nil {
		return perrors.NewErrForbidden("Assignee is not a member of this project", errors.New("assignee not a member"))
	}

	return nil
}

// hydrate resolves a task's related entities for responses; foreign keys
// alone never leave the API.
func (s *TaskService) hydrate(ctx context.Context, t *Task) (*Task, error) {
	if t == nil {
		return nil, perrors.NewErrInternalServerError("Task missing after mutation", errors.New("nil task"))
	}

	ids := []uuid.UUID{t.CreatorID}
	if t.AssigneeID != nil {
		ids = append(ids, *t.AssigneeID)
	}

	comments, err := s.repo.ListComments(ctx, s.db, t.ID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to load comments", err)
	}
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}

	users, err := s.users.MapByIDs(ctx, ids)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to load related users", err)
	}

	labels, err := s.labels.MapByTasks(ctx, s.db, []uuid.UUID{t.ID})
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to load labels", err)
	}

	t.Creator = users[t.CreatorID]
	if t.AssigneeID != nil {
		t.Assignee = users[*t.AssigneeID]
	}
	t.Labels = labels[t.ID]
	for _, c := range comments {
		c.Author = users[c.AuthorID]
	}
	t.Comments = comments

	return t, nil
}

func changedFields(req *UpdateTaskRequest) map[string]any {
	details := map[string]any{}
	if req.Title != nil {
		details["title"] = *req.Title
	}
	if req.Description != nil {
		details["description"] = true
	}
	if req.Status != nil {
		details["status"] = *req.Status
	}
	if req.DueDate != nil {
		details["dueDate"] = *req.DueDate
	}
	return details
}
