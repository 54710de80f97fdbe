package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/perrors"
)

// MembershipSource resolves the (project, user) membership row. The queryer
// is passed through so lookups run inside the caller's transaction and see
// its snapshot.
type MembershipSource interface {
	GetMembership(ctx context.Context, q sqlx.QueryerContext, projectID, userID uuid.UUID) (*Membership, error)
}

// Guard is the authorization decision point consulted before every
// mutation. It has no state of its own beyond the membership source.
type Guard struct {
	members MembershipSource
}

func NewGuard(members MembershipSource) *Guard {
	return &Guard{members: members}
}

// RequireAuthenticated fails when no actor was resolved from credentials.
func RequireAuthenticated(actor *Actor) error {
	if actor == nil || actor.UserID == uuid.Nil {
		return perrors.NewErrUnauthenticated("Authentication required", errors.New("no actor resolved"))
	}
	return nil
}

// RequireGlobalAdmin fails Unauthenticated before Forbidden, so the two
// causes are never conflated.
func RequireGlobalAdmin(actor *Actor) error {
	if err := RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.Role != RoleAdmin {
		return perrors.NewErrForbidden("Admin role required", errors.New("actor is not an admin"))
	}
	return nil
}

// Chain evaluates guards left to right and surfaces the first failure.
func Chain(guards ...func() error) error {
	for _, g := range guards {
		if err := g(); err != nil {
			return err
		}
	}
	return nil
}

// Require checks the policy table for action against the actor's global
// role and project membership. Admins short-circuit without a membership
// lookup; for them the returned membership is nil.
func (g *Guard) Require(ctx context.Context, q sqlx.QueryerContext, actor *Actor, projectID uuid.UUID, action Action) (*Membership, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		return nil, nil
	}

	membership, err := g.members.GetMembership(ctx, q, projectID, actor.UserID)
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to resolve project membership", err)
	}

	var role MemberRole
	if membership != nil {
		role = membership.Role
	}

	if !Decide(action, actor.Role, role) {
		return nil, perrors.NewErrForbidden("Not allowed on this project", errors.New("membership does not permit "+string(action)))
	}

	return membership, nil
}

// RequireProjectMember allows any member of the project (or an admin).
func (g *Guard) RequireProjectMember(ctx context.Context, q sqlx.QueryerContext, actor *Actor, projectID uuid.UUID) (*Membership, error) {
	return g.Require(ctx, q, actor, projectID, ActionProjectView)
}

// RequireProjectOwner additionally requires the membership role OWNER.
func (g *Guard) RequireProjectOwner(ctx context.Context, q sqlx.QueryerContext, actor *Actor, projectID uuid.UUID) (*Membership, error) {
	return g.Require(ctx, q, actor, projectID, ActionMemberInvite)
}

// IsMember reports plain membership without failing, for read filters.
func (g *Guard) IsMember(ctx context.Context, q sqlx.QueryerContext, actor *Actor, projectID uuid.UUID) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	membership, err := g.members.GetMembership(ctx, q, projectID, actor.UserID)
	if err != nil {
		return false, err
	}
	return membership != nil, nil
}
