package task

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/mosaicboards/mosaic/internal/services/activity"
	"github.com/mosaicboards/mosaic/internal/services/label"
	"github.com/mosaicboards/mosaic/internal/services/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMembers struct {
	membership *authz.Membership
}

func (s *stubMembers) GetMembership(_ context.Context, _ sqlx.QueryerContext, _, _ uuid.UUID) (*authz.Membership, error) {
	return s.membership, nil
}

func newTestService(t *testing.T, members authz.MembershipSource) (*TaskService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dbx := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewTaskRepo(dbx)
	svc := NewTaskService(
		dbx,
		repo,
		authz.NewGuard(members),
		activity.NewRecorder(activity.NewActivityRepo(dbx)),
		members,
		user.NewUserRepo(dbx),
		label.NewLabelRepo(dbx),
	)
	return svc, mock
}

func taskRow(id, columnID, creatorID uuid.UUID, position int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "column_id", "title", "description", "status", "position",
		"creator_id", "assignee_id", "due_date", "created_at", "updated_at",
	}).AddRow(id, columnID, "Ship it", "", "TODO", position, creatorID, nil, nil, now, now)
}

func TestMoveHappyPathWritesOneAuditRow(t *testing.T) {
	actor := &authz.Actor{UserID: uuid.New(), Email: "ada@example.com", Role: authz.RoleUser}
	projectID := uuid.New()
	taskID := uuid.New()
	fromColumn := uuid.New()
	toColumn := uuid.New()

	members := &stubMembers{membership: &authz.Membership{
		ProjectID: projectID, UserID: actor.UserID, Role: authz.MemberRoleMember,
	}}
	svc, mock := newTestService(t, members)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tasks WHERE id =").
		WillReturnRows(taskRow(taskID, fromColumn, actor.UserID, 2))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(projectID))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(projectID))

	// source column compacts, target makes room, then the single placement
	mock.ExpectExec("SET position = position - 1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`SET position = position \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tasks SET column_id =").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("FROM tasks WHERE id =").
		WillReturnRows(taskRow(taskID, toColumn, actor.UserID, 2))
	mock.ExpectExec("INSERT INTO activity_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// response hydration runs after commit
	mock.ExpectQuery("FROM comments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "author_id", "body", "created_at"}))
	mock.ExpectQuery("FROM users WHERE id = ANY").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "password_hash", "role", "avatar_url", "created_at", "updated_at",
		}).AddRow(actor.UserID, "Ada", "ada@example.com", "x", "USER", nil, time.Now(), time.Now()))
	mock.ExpectQuery("FROM task_labels").
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "id", "project_id", "name", "color", "created_at"}))

	moved, err := svc.Move(context.Background(), actor, taskID, &MoveTaskRequest{ToColumnID: toColumn, ToPosition: 2})
	require.NoError(t, err)
	assert.Equal(t, toColumn, moved.ColumnID)
	assert.Equal(t, 2, moved.Position)
	assert.Equal(t, "Ada", moved.Creator.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveRetriesOnSerializationFailure(t *testing.T) {
	actor := &authz.Actor{UserID: uuid.New(), Email: "ada@example.com", Role: authz.RoleUser}
	projectID := uuid.New()
	taskID := uuid.New()
	fromColumn := uuid.New()
	toColumn := uuid.New()

	members := &stubMembers{membership: &authz.Membership{
		ProjectID: projectID, UserID: actor.UserID, Role: authz.MemberRoleMember,
	}}
	svc, mock := newTestService(t, members)

	// first attempt: the source-column shift loses a serialization race
	mock.ExpectBegin()
	mock.ExpectQuery("FROM tasks WHERE id =").
		WillReturnRows(taskRow(taskID, fromColumn, actor.UserID, 2))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(projectID))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(projectID))
	mock.ExpectExec("SET position = position - 1").
		WillReturnError(&pq.Error{Code: "40001"})
	mock.ExpectRollback()

	// second attempt runs the whole move clean
	mock.ExpectBegin()
	mock.ExpectQuery("FROM tasks WHERE id =").
		WillReturnRows(taskRow(taskID, fromColumn, actor.UserID, 2))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(projectID))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(projectID))
	mock.ExpectExec("SET position = position - 1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`SET position = position \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tasks SET column_id =").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM tasks WHERE id =").
		WillReturnRows(taskRow(taskID, toColumn, actor.UserID, 2))
	mock.ExpectExec("INSERT INTO activity_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("FROM comments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "author_id", "body", "created_at"}))
	mock.ExpectQuery("FROM users WHERE id = ANY").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "password_hash", "role", "avatar_url", "created_at", "updated_at",
		}).AddRow(actor.UserID, "Ada", "ada@example.com", "x", "USER", nil, time.Now(), time.Now()))
	mock.ExpectQuery("FROM task_labels").
		WillReturnRows(sqlmock.NewRows([]string{"task_id", "id", "project_id", "name", "color", "created_at"}))

	moved, err := svc.Move(context.Background(), actor, taskID, &MoveTaskRequest{ToColumnID: toColumn, ToPosition: 2})
	require.NoError(t, err)
	assert.Equal(t, toColumn, moved.ColumnID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveAcrossProjectsForbidden(t *testing.T) {
	actor := &authz.Actor{UserID: uuid.New(), Role: authz.RoleUser}
	taskID := uuid.New()
	fromColumn := uuid.New()
	toColumn := uuid.New()

	svc, mock := newTestService(t, &stubMembers{})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tasks WHERE id =").
		WillReturnRows(taskRow(taskID, fromColumn, actor.UserID, 1))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(uuid.New()))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(uuid.New()))
	mock.ExpectRollback()

	_, err := svc.Move(context.Background(), actor, taskID, &MoveTaskRequest{ToColumnID: toColumn, ToPosition: 1})
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	// no shift or placement ever ran
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveUnknownTaskNotFound(t *testing.T) {
	actor := &authz.Actor{UserID: uuid.New(), Role: authz.RoleUser}

	svc, mock := newTestService(t, &stubMembers{})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tasks WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.Move(context.Background(), actor, uuid.New(), &MoveTaskRequest{ToColumnID: uuid.New(), ToPosition: 1})
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveOutOfRangePositionRollsBack(t *testing.T) {
	actor := &authz.Actor{UserID: uuid.New(), Role: authz.RoleUser}
	projectID := uuid.New()
	taskID := uuid.New()
	fromColumn := uuid.New()
	toColumn := uuid.New()

	members := &stubMembers{membership: &authz.Membership{
		ProjectID: projectID, UserID: actor.UserID, Role: authz.MemberRoleMember,
	}}
	svc, mock := newTestService(t, members)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM tasks WHERE id =").
		WillReturnRows(taskRow(taskID, fromColumn, actor.UserID, 1))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(projectID))
	mock.ExpectQuery("SELECT project_id FROM columns WHERE id =").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}).AddRow(projectID))
	mock.ExpectExec("SET position = position - 1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Move(context.Background(), actor, taskID, &MoveTaskRequest{ToColumnID: toColumn, ToPosition: 5})
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeBadInput))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveRejectsNonPositivePosition(t *testing.T) {
	svc, mock := newTestService(t, &stubMembers{})

	_, err := svc.Move(context.Background(), &authz.Actor{UserID: uuid.New()}, uuid.New(), &MoveTaskRequest{ToColumnID: uuid.New(), ToPosition: 0})
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeBadInput))

	// rejected before any database work
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, mock := newTestService(t, &stubMembers{})

	_, err := svc.Create(context.Background(), &authz.Actor{UserID: uuid.New()}, uuid.New(), &CreateTaskRequest{})
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeBadInput))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	svc, mock := newTestService(t, &stubMembers{})

	bad := Status("SHIPPED")
	_, err := svc.Update(context.Background(), &authz.Actor{UserID: uuid.New()}, uuid.New(), &UpdateTaskRequest{Status: &bad})
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeBadInput))
	assert.NoError(t, mock.ExpectationsWereMet())
}
