package services

import (
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/config"
	"github.com/mosaicboards/mosaic/internal/db"
	"github.com/mosaicboards/mosaic/internal/services/activity"
	"github.com/mosaicboards/mosaic/internal/services/column"
	"github.com/mosaicboards/mosaic/internal/services/invitation"
	"github.com/mosaicboards/mosaic/internal/services/label"
	"github.com/mosaicboards/mosaic/internal/services/project"
	"github.com/mosaicboards/mosaic/internal/services/task"
	"github.com/mosaicboards/mosaic/internal/services/user"
)

type Services struct {
	User       *user.UserService
	Project    *project.ProjectService
	Column     *column.ColumnService
	Task       *task.TaskService
	Label      *label.LabelService
	Invitation *invitation.InvitationService
	Activity   *activity.ActivityService

	DB *sqlx.DB
}

func NewServices(conf *config.Config) *Services {
	dbconn := db.NewConn(conf)
	return NewServicesWithDB(dbconn)
}

// NewServicesWithDB wires repos, the authorization guard and the audit
// recorder onto an existing connection.
func NewServicesWithDB(dbconn *sqlx.DB) *Services {
	userRepo := user.NewUserRepo(dbconn)
	projectRepo := project.NewProjectRepo(dbconn)
	memberRepo := project.NewMemberRepo(dbconn)
	columnRepo := column.NewColumnRepo(dbconn)
	taskRepo := task.NewTaskRepo(dbconn)
	labelRepo := label.NewLabelRepo(dbconn)
	invitationRepo := invitation.NewInvitationRepo(dbconn)
	activityRepo := activity.NewActivityRepo(dbconn)

	guard := authz.NewGuard(memberRepo)
	recorder := activity.NewRecorder(activityRepo)

	return &Services{
		User:       user.NewUserService(userRepo),
		Project:    project.NewProjectService(dbconn, projectRepo, memberRepo, columnRepo, taskRepo, labelRepo, userRepo, guard, recorder),
		Column:     column.NewColumnService(dbconn, columnRepo, guard, recorder),
		Task:       task.NewTaskService(dbconn, taskRepo, guard, recorder, memberRepo, userRepo, labelRepo),
		Label:      label.NewLabelService(dbconn, labelRepo, guard, recorder),
		Invitation: invitation.NewInvitationService(dbconn, invitationRepo, memberRepo, guard, recorder),
		Activity:   activity.NewActivityService(activityRepo, guard, dbconn),

		DB: dbconn,
	}
}
