package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/db"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/mosaicboards/mosaic/internal/services/activity"
	"github.com/mosaicboards/mosaic/internal/services/column"
	"github.com/mosaicboards/mosaic/internal/services/label"
	"github.com/mosaicboards/mosaic/internal/services/task"
	"github.com/mosaicboards/mosaic/internal/services/user"
)

// ProjectService contains business logic for projects
type ProjectService struct {
	db       *sqlx.DB
	repo     *ProjectRepo
	members  *MemberRepo
	columns  *column.ColumnRepo
	tasks    *task.TaskRepo
	labels   *label.LabelRepo
	users    *user.UserRepo
	guard    *authz.Guard
	recorder *activity.Recorder
}

func NewProjectService(dbConn *sqlx.DB, repo *ProjectRepo, members *MemberRepo, columns *column.ColumnRepo, tasks *task.TaskRepo, labels *label.LabelRepo, users *user.UserRepo, guard *authz.Guard, recorder *activity.Recorder) *ProjectService {
	return &ProjectService{
		db:       dbConn,
		repo:     repo,
		members:  members,
		columns:  columns,
		tasks:    tasks,
		labels:   labels,
		users:    users,
		guard:    guard,
		recorder: recorder,
	}
}

// Create registers a project with the actor as OWNER and three default
// columns, all in one transaction with the audit row.
func (s *ProjectService) Create(ctx context.Context, actor *authz.Actor, req *CreateProjectRequest) (*Project, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, perrors.NewErrBadInput("Project name is required", errors.New("empty name"))
	}

	var created *Project

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		p, err := s.repo.Insert(ctx, tx, req.Name, actor.UserID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to create project", err)
		}

		if err := s.members.Insert(ctx, tx, p.ID, actor.UserID, authz.MemberRoleOwner); err != nil {
			return perrors.NewErrInternalServerError("Failed to create owner membership", err)
		}

		for i, name := range DefaultColumns {
			if _, err := s.columns.Insert(ctx, tx, p.ID, name, i+1); err != nil {
				return perrors.NewErrInternalServerError("Failed to seed default columns", err)
			}
		}

		if err := s.recorder.Record(ctx, tx, actor, activity.ProjectCreated, p.ID, nil, map[string]any{
			"name": p.Name,
		}); err != nil {
			return perrors.NewErrInternalServerError("Failed to record project creation", err)
		}

		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.assemble(ctx, created)
}

// List returns the actor's projects; admins see all projects.
func (s *ProjectService) List(ctx context.Context, actor *authz.Actor, offset, limit int) ([]*Project, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	var (
		projects []*Project
		err      error
	)
	if actor.IsAdmin() {
		projects, err = s.repo.ListAll(ctx, offset, limit)
	} else {
		projects, err = s.repo.ListForUser(ctx, actor.UserID, offset, limit)
	}
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list projects", err)
	}

	return projects, nil
}

// Get returns the project with members, labels and the full board (ordered
// columns with ordered tasks) resolved.
func (s *ProjectService) Get(ctx context.Context, actor *authz.Actor, id uuid.UUID) (*Project, error) {
	p, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to get project", err)
	}
	if p == nil {
		return nil, perrors.NewErrNotFound("Project not found", errors.New("unknown project id"))
	}

	if _, err := s.guard.Require(ctx, s.db, actor, id, authz.ActionProjectView); err != nil {
		return nil, err
	}

	return s.assemble(ctx, p)
}

// assemble hydrates a project's nested entities for responses.
func (s *ProjectService) assemble(ctx context.Context, p *Project) (*Project, error) {
	members, err := s.members.ListByProject(ctx, s.db, p.ID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list members", err)
	}

	cols, err := s.columns.ListByProject(ctx, s.db, p.ID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list columns", err)
	}

	tasks, err := s.tasks.ListByProject(ctx, s.db, p.ID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list tasks", err)
	}

	labels, err := s.labels.ListByProject(ctx, s.db, p.ID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to list labels", err)
	}

	taskIDs := make([]uuid.UUID, 0, len(tasks))
	userIDs := make([]uuid.UUID, 0, len(members)+len(tasks))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
		userIDs = append(userIDs, t.CreatorID)
		if t.AssigneeID != nil {
			userIDs = append(userIDs, *t.AssigneeID)
		}
	}

	users, err := s.users.MapByIDs(ctx, userIDs)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to load related users", err)
	}

	taskLabels, err := s.labels.MapByTasks(ctx, s.db, taskIDs)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to load task labels", err)
	}

	for _, m := range members {
		m.User = users[m.UserID]
	}

	byColumn := make(map[uuid.UUID][]*task.Task)
	for _, t := range tasks {
		t.Creator = users[t.CreatorID]
		if t.AssigneeID != nil {
			t.Assignee = users[*t.AssigneeID]
		}
		t.Labels = taskLabels[t.ID]
		byColumn[t.ColumnID] = append(byColumn[t.ColumnID], t)
	}

	board := make([]*BoardColumn, 0, len(cols))
	for _, c := range cols {
		tasksInColumn := byColumn[c.ID]
		if tasksInColumn == nil {
			tasksInColumn = []*task.Task{}
		}
		board = append(board, &BoardColumn{Column: c, Tasks: tasksInColumn})
	}

	p.Members = members
	p.Columns = board
	p.Labels = labels

	return p, nil
}
