package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allActions = []Action{
	ActionProjectView,
	ActionColumnCreate,
	ActionTaskCreate,
	ActionTaskUpdate,
	ActionTaskMove,
	ActionTaskAssign,
	ActionTaskComment,
	ActionLabelCreate,
	ActionLabelAttach,
	ActionLabelDetach,
	ActionMemberInvite,
	ActionInviteRevoke,
	ActionActivityView,
}

var ownerOnly = map[Action]bool{
	ActionMemberInvite: true,
	ActionInviteRevoke: true,
}

func TestDecideCoversEveryAction(t *testing.T) {
	for _, action := range allActions {
		min, known := MinimumRole(action)
		require.True(t, known, "action %s must be in the policy table", action)

		// admins pass regardless of membership
		assert.True(t, Decide(action, RoleAdmin, ""), "admin on %s", action)

		// non-members never pass
		assert.False(t, Decide(action, RoleUser, ""), "non-member on %s", action)

		// owners pass everything
		assert.True(t, Decide(action, RoleUser, MemberRoleOwner), "owner on %s", action)

		// plain members pass only member-level actions
		wantMember := !ownerOnly[action]
		assert.Equal(t, wantMember, Decide(action, RoleUser, MemberRoleMember), "member on %s", action)

		if ownerOnly[action] {
			assert.Equal(t, MemberRoleOwner, min)
		} else {
			assert.Equal(t, MemberRoleMember, min)
		}
	}
}

func TestDecideUnknownActionDenied(t *testing.T) {
	assert.False(t, Decide(Action("task.delete"), RoleUser, MemberRoleOwner))
	assert.True(t, Decide(Action("task.delete"), RoleAdmin, ""), "admin bypasses even unknown actions")

	_, known := MinimumRole(Action("task.delete"))
	assert.False(t, known)
}

func TestRequireAuthenticated(t *testing.T) {
	assert.Error(t, RequireAuthenticated(nil))
	assert.Error(t, RequireAuthenticated(&Actor{}))

	err := RequireAuthenticated(nil)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeUnauthenticated))

	assert.NoError(t, RequireAuthenticated(&Actor{UserID: uuid.New()}))
}

func TestRequireGlobalAdmin(t *testing.T) {
	err := RequireGlobalAdmin(nil)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeUnauthenticated), "missing identity beats missing role")

	err = RequireGlobalAdmin(&Actor{UserID: uuid.New(), Role: RoleUser})
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	assert.NoError(t, RequireGlobalAdmin(&Actor{UserID: uuid.New(), Role: RoleAdmin}))
}

func TestChainStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var reached bool

	err := Chain(
		func() error { return nil },
		func() error { return boom },
		func() error { reached = true; return nil },
	)

	assert.Equal(t, boom, err)
	assert.False(t, reached)
}

// stubMembers serves canned memberships and records whether it was
// consulted.
type stubMembers struct {
	membership *Membership
	err        error
	called     bool
}

func (s *stubMembers) GetMembership(_ context.Context, _ sqlx.QueryerContext, _, _ uuid.UUID) (*Membership, error) {
	s.called = true
	return s.membership, s.err
}

func TestGuardAdminShortCircuits(t *testing.T) {
	src := &stubMembers{}
	g := NewGuard(src)

	admin := &Actor{UserID: uuid.New(), Role: RoleAdmin}
	membership, err := g.Require(context.Background(), nil, admin, uuid.New(), ActionMemberInvite)

	require.NoError(t, err)
	assert.Nil(t, membership)
	assert.False(t, src.called, "admin path must not hit the membership table")
}

func TestGuardRequiresAuthentication(t *testing.T) {
	g := NewGuard(&stubMembers{})

	_, err := g.Require(context.Background(), nil, nil, uuid.New(), ActionProjectView)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeUnauthenticated))
}

func TestGuardForbidsNonMembers(t *testing.T) {
	g := NewGuard(&stubMembers{membership: nil})

	actor := &Actor{UserID: uuid.New(), Role: RoleUser}
	_, err := g.Require(context.Background(), nil, actor, uuid.New(), ActionProjectView)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))
}

func TestGuardMemberVsOwnerActions(t *testing.T) {
	actor := &Actor{UserID: uuid.New(), Role: RoleUser}
	projectID := uuid.New()

	member := &Membership{ID: uuid.New(), ProjectID: projectID, UserID: actor.UserID, Role: MemberRoleMember}
	g := NewGuard(&stubMembers{membership: member})

	got, err := g.Require(context.Background(), nil, actor, projectID, ActionTaskMove)
	require.NoError(t, err)
	assert.Equal(t, member, got)

	_, err = g.Require(context.Background(), nil, actor, projectID, ActionMemberInvite)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeForbidden))

	owner := &Membership{ID: uuid.New(), ProjectID: projectID, UserID: actor.UserID, Role: MemberRoleOwner}
	g = NewGuard(&stubMembers{membership: owner})

	_, err = g.Require(context.Background(), nil, actor, projectID, ActionMemberInvite)
	assert.NoError(t, err)
}

func TestGuardIsMember(t *testing.T) {
	actor := &Actor{UserID: uuid.New(), Role: RoleUser}

	g := NewGuard(&stubMembers{membership: &Membership{Role: MemberRoleMember}})
	ok, err := g.IsMember(context.Background(), nil, actor, uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)

	g = NewGuard(&stubMembers{})
	ok, err = g.IsMember(context.Background(), nil, actor, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	src := &stubMembers{}
	g = NewGuard(src)
	ok, err = g.IsMember(context.Background(), nil, &Actor{UserID: uuid.New(), Role: RoleAdmin}, uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, src.called)
}
