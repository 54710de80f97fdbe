package authz

// Action enumerates every guarded operation. The policy table below maps
// each action to the minimum project-local role required of a non-admin
// actor, so the whole authorization surface is enumerable and testable.
type Action string

const (
	ActionProjectView    Action = "project.view"
	ActionColumnCreate   Action = "column.create"
	ActionTaskCreate     Action = "task.create"
	ActionTaskUpdate     Action = "task.update"
	ActionTaskMove       Action = "task.move"
	ActionTaskAssign     Action = "task.assign"
	ActionTaskComment    Action = "task.comment"
	ActionLabelCreate    Action = "label.create"
	ActionLabelAttach    Action = "label.attach"
	ActionLabelDetach    Action = "label.detach"
	ActionMemberInvite   Action = "member.invite"
	ActionInviteRevoke   Action = "invite.revoke"
	ActionActivityView   Action = "activity.view"
)

var policy = map[Action]MemberRole{
	ActionProjectView:  MemberRoleMember,
	ActionColumnCreate: MemberRoleMember,
	ActionTaskCreate:   MemberRoleMember,
	ActionTaskUpdate:   MemberRoleMember,
	ActionTaskMove:     MemberRoleMember,
	ActionTaskAssign:   MemberRoleMember,
	ActionTaskComment:  MemberRoleMember,
	ActionLabelCreate:  MemberRoleMember,
	ActionLabelAttach:  MemberRoleMember,
	ActionLabelDetach:  MemberRoleMember,
	ActionMemberInvite: MemberRoleOwner,
	ActionInviteRevoke: MemberRoleOwner,
	ActionActivityView: MemberRoleMember,
}

// MinimumRole returns the project role a non-admin actor must hold for the
// action. The bool is false for unknown actions, which are always denied.
func MinimumRole(action Action) (MemberRole, bool) {
	min, ok := policy[action]
	return min, ok
}

// Decide is the pure policy decision: does an actor with the given global
// role and membership (empty when not a member) get to perform action?
func Decide(action Action, global GlobalRole, member MemberRole) bool {
	if global == RoleAdmin {
		return true
	}

	min, ok := policy[action]
	if !ok {
		return false
	}

	if member == "" {
		return false
	}

	return member.covers(min)
}
