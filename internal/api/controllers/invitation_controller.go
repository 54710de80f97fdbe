package controllers

import (
	"github.com/fasthttp/router"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/mosaicboards/mosaic/internal/services"
	"github.com/mosaicboards/mosaic/internal/services/invitation"
	"github.com/valyala/fasthttp"
)

func RegisterInvitationRoutes(r *router.Router, svc *services.Services) {
	// Redeem an invitation token
	r.POST("/api/board-server/invitations/accept", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body invitation.AcceptRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		accepted, err := svc.Invitation.Accept(stdCtx, actorFrom(ctx), &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to accept invitation", err)
			return
		}

		writeOK(ctx, stdCtx, "Invitation accepted successfully", accepted)
	})

	// Revoke a pending invitation
	r.POST("/api/board-server/invitations/{id}/revoke", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		revoked, err := svc.Invitation.Revoke(stdCtx, actorFrom(ctx), id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to revoke invitation", err)
			return
		}

		writeOK(ctx, stdCtx, "Invitation revoked successfully", revoked)
	})
}
