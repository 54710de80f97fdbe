package authz

import "github.com/google/uuid"

type GlobalRole string

const (
	RoleAdmin GlobalRole = "ADMIN"
	RoleUser  GlobalRole = "USER"
)

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleMember MemberRole = "MEMBER"
)

// Actor is the immutable identity a request acts as. It is built once from
// the verified token claims and passed explicitly into every guard and
// service call; nothing reads ambient session state.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   GlobalRole
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Membership is a (project, user) pair with its project-local role.
type Membership struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	ProjectID uuid.UUID  `db:"project_id" json:"project_id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Role      MemberRole `db:"role" json:"role"`
}

// covers reports whether holding r satisfies a requirement of min.
func (r MemberRole) covers(min MemberRole) bool {
	if r == MemberRoleOwner {
		return true
	}
	return r == min
}
