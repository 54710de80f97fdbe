package invitation

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/db"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/mosaicboards/mosaic/internal/services/activity"
	"github.com/mosaicboards/mosaic/internal/services/project"
)

// InvitationService contains business logic for inviting members and
// redeeming invitation tokens.
type InvitationService struct {
	db       *sqlx.DB
	repo     *InvitationRepo
	members  *project.MemberRepo
	guard    *authz.Guard
	recorder *activity.Recorder
}

func NewInvitationService(dbConn *sqlx.DB, repo *InvitationRepo, members *project.MemberRepo, guard *authz.Guard, recorder *activity.Recorder) *InvitationService {
	return &InvitationService{
		db:       dbConn,
		repo:     repo,
		members:  members,
		guard:    guard,
		recorder: recorder,
	}
}

// Invite creates a PENDING invitation for an email address. Only the
// project owner (or an admin) may invite.
func (s *InvitationService) Invite(ctx context.Context, actor *authz.Actor, projectID uuid.UUID, req *InviteRequest) (*Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, perrors.NewErrBadInput("A valid email is required", errors.New("invalid invite email"))
	}

	token, err := newToken()
	if err != nil {
		return nil, perrors.NewErrInternalServerError("Failed to generate invitation token", err)
	}

	var created *Invitation

	err = db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		exists, err := s.repo.ProjectExists(ctx, tx, projectID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to check project", err)
		}
		if !exists {
			return perrors.NewErrNotFound("Project not found", errors.New("unknown project id"))
		}

		if _, err := s.guard.Require(ctx, tx, actor, projectID, authz.ActionMemberInvite); err != nil {
			return err
		}

		inv, err := s.repo.Insert(ctx, tx, projectID, email, token, actor.UserID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to create invitation", err)
		}

		if err := s.recorder.Record(ctx, tx, actor, activity.MemberInvited, projectID, nil, map[string]any{
			"email": email,
		}); err != nil {
			return perrors.NewErrInternalServerError("Failed to record invitation", err)
		}

		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Revoke moves a PENDING invitation to REVOKED. Accepted or already
// revoked invitations are terminal.
func (s *InvitationService) Revoke(ctx context.Context, actor *authz.Actor, invitationID uuid.UUID) (*Invitation, error) {
	var revoked *Invitation

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		inv, err := s.repo.GetByID(ctx, tx, invitationID)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to get invitation", err)
		}
		if inv == nil {
			return perrors.NewErrNotFound("Invitation not found", errors.New("unknown invitation id"))
		}

		if _, err := s.guard.Require(ctx, tx, actor, inv.ProjectID, authz.ActionInviteRevoke); err != nil {
			return err
		}

		if inv.Status != StatusPending {
			return perrors.NewErrBadInput(
				fmt.Sprintf("Invitation is %s and cannot be revoked", inv.Status),
				errors.New("invitation not pending"))
		}

		ok, err := s.repo.Transition(ctx, tx, inv.ID, StatusPending, StatusRevoked)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to revoke invitation", err)
		}
		if !ok {
			return perrors.NewErrBadInput("Invitation is no longer pending", errors.New("revoke transition lost"))
		}

		if err := s.recorder.Record(ctx, tx, actor, activity.InviteRevoked, inv.ProjectID, nil, map[string]any{
			"email": inv.Email,
		}); err != nil {
			return perrors.NewErrInternalServerError("Failed to record revocation", err)
		}

		inv.Status = StatusRevoked
		revoked = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	return revoked, nil
}

// Accept redeems an invitation token for the authenticated actor. The
// actor's email must match the invitee's unless the actor is an admin.
// Membership creation is idempotent so a racing duplicate never fails
// the redemption.
func (s *InvitationService) Accept(ctx context.Context, actor *authz.Actor, req *AcceptRequest) (*Invitation, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if req.Token == "" {
		return nil, perrors.NewErrBadInput("Invitation token is required", errors.New("empty token"))
	}

	var accepted *Invitation

	err := db.WithSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		inv, err := s.repo.GetByToken(ctx, tx, req.Token)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to get invitation", err)
		}
		if inv == nil {
			return perrors.NewErrNotFound("Invitation not found", errors.New("unknown invitation token"))
		}

		if !actor.IsAdmin() && !strings.EqualFold(actor.Email, inv.Email) {
			return perrors.NewErrForbidden("Invitation was issued to a different email", errors.New("email mismatch"))
		}

		if inv.Status != StatusPending {
			return perrors.NewErrBadInput(
				fmt.Sprintf("Invitation is %s and cannot be accepted", inv.Status),
				errors.New("invitation not pending"))
		}

		ok, err := s.repo.Transition(ctx, tx, inv.ID, StatusPending, StatusAccepted)
		if err != nil {
			return perrors.NewErrInternalServerError("Failed to accept invitation", err)
		}
		if !ok {
			return perrors.NewErrBadInput("Invitation is no longer pending", errors.New("accept transition lost"))
		}

		if err := s.members.Upsert(ctx, tx, inv.ProjectID, actor.UserID); err != nil {
			return perrors.NewErrInternalServerError("Failed to create membership", err)
		}

		if err := s.recorder.Record(ctx, tx, actor, activity.InviteAccepted, inv.ProjectID, nil, map[string]any{
			"email": inv.Email,
		}); err != nil {
			return perrors.NewErrInternalServerError("Failed to record acceptance", err)
		}

		inv.Status = StatusAccepted
		accepted = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	return accepted, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
