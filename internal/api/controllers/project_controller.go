package controllers

import (
	"github.com/fasthttp/router"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/mosaicboards/mosaic/internal/services"
	"github.com/mosaicboards/mosaic/internal/services/column"
	"github.com/mosaicboards/mosaic/internal/services/invitation"
	"github.com/mosaicboards/mosaic/internal/services/label"
	"github.com/mosaicboards/mosaic/internal/services/project"
	"github.com/valyala/fasthttp"
)

func RegisterProjectRoutes(r *router.Router, svc *services.Services) {
	// Create project
	r.POST("/api/board-server/projects", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var body project.CreateProjectRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		created, err := svc.Project.Create(stdCtx, actorFrom(ctx), &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create project", err)
			return
		}

		writeOK(ctx, stdCtx, "Project created successfully", created)
	})

	// List the actor's projects
	r.GET("/api/board-server/projects", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		offset, limit, err := parsePage(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Invalid pagination", err)
			return
		}

		projects, err := svc.Project.List(stdCtx, actorFrom(ctx), offset, limit)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list projects", err)
			return
		}

		writeOK(ctx, stdCtx, "Projects retrieved successfully", projects)
	})

	// Get the full board for a project
	r.GET("/api/board-server/projects/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		p, err := svc.Project.Get(stdCtx, actorFrom(ctx), id)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get project", err)
			return
		}

		writeOK(ctx, stdCtx, "Project retrieved successfully", p)
	})

	// Add a column to the board
	r.POST("/api/board-server/projects/{id}/columns", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		var body column.CreateColumnRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		created, err := svc.Column.Create(stdCtx, actorFrom(ctx), id, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create column", err)
			return
		}

		writeOK(ctx, stdCtx, "Column created successfully", created)
	})

	// Create a label in the project's palette
	r.POST("/api/board-server/projects/{id}/labels", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		var body label.CreateLabelRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		created, err := svc.Label.Create(stdCtx, actorFrom(ctx), id, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create label", err)
			return
		}

		writeOK(ctx, stdCtx, "Label created successfully", created)
	})

	// Invite a member by email
	r.POST("/api/board-server/projects/{id}/invitations", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		var body invitation.InviteRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		created, err := svc.Invitation.Invite(stdCtx, actorFrom(ctx), id, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create invitation", err)
			return
		}

		writeOK(ctx, stdCtx, "Invitation created successfully", created)
	})

	// Read the project's audit trail, newest first
	r.GET("/api/board-server/projects/{id}/activity", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		offset, limit, err := parsePage(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Invalid pagination", err)
			return
		}

		entries, err := svc.Activity.List(stdCtx, actorFrom(ctx), id, offset, limit)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list activity", err)
			return
		}

		writeOK(ctx, stdCtx, "Activity retrieved successfully", entries)
	})
}
