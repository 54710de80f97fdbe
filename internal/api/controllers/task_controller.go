package controllers

import (
	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/mosaicboards/mosaic/internal/services"
	"github.com/mosaicboards/mosaic/internal/services/task"
	"github.com/valyala/fasthttp"
)

func RegisterTaskRoutes(r *router.Router, svc *services.Services) {
	// Create a task at the tail of a column
	r.POST("/api/board-server/columns/{id}/tasks", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		columnID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		var body task.CreateTaskRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		created, err := svc.Task.Create(stdCtx, actorFrom(ctx), columnID, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to create task", err)
			return
		}

		writeOK(ctx, stdCtx, "Task created successfully", created)
	})

	// Update task fields
	r.PATCH("/api/board-server/tasks/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		var body task.UpdateTaskRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		updated, err := svc.Task.Update(stdCtx, actorFrom(ctx), id, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to update task", err)
			return
		}

		writeOK(ctx, stdCtx, "Task updated successfully", updated)
	})

	// Move a task to a column/position
	r.POST("/api/board-server/tasks/{id}/move", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		var body task.MoveTaskRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		moved, err := svc.Task.Move(stdCtx, actorFrom(ctx), id, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to move task", err)
			return
		}

		writeOK(ctx, stdCtx, "Task moved successfully", moved)
	})

	// Assign or unassign a task
	r.POST("/api/board-server/tasks/{id}/assign", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		var body task.AssignTaskRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		assigned, err := svc.Task.Assign(stdCtx, actorFrom(ctx), id, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to assign task", err)
			return
		}

		writeOK(ctx, stdCtx, "Task assigned successfully", assigned)
	})

	// Comment on a task
	r.POST("/api/board-server/tasks/{id}/comments", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		var body task.CommentRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrBadInput("Invalid request body", err))
			return
		}

		comment, err := svc.Task.Comment(stdCtx, actorFrom(ctx), id, &body)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to add comment", err)
			return
		}

		writeOK(ctx, stdCtx, "Comment added successfully", comment)
	})

	// Attach a label to a task
	r.POST("/api/board-server/tasks/{id}/labels/{labelId}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		taskID, labelID, err := taskLabelParams(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		if err := svc.Label.Attach(stdCtx, actorFrom(ctx), taskID, labelID); err != nil {
			writeError(ctx, stdCtx, "Failed to attach label", err)
			return
		}

		writeOK(ctx, stdCtx, "Label attached successfully", nil)
	})

	// Detach a label from a task
	r.DELETE("/api/board-server/tasks/{id}/labels/{labelId}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		taskID, labelID, err := taskLabelParams(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrBadInput("Invalid ID format", err))
			return
		}

		if err := svc.Label.Detach(stdCtx, actorFrom(ctx), taskID, labelID); err != nil {
			writeError(ctx, stdCtx, "Failed to detach label", err)
			return
		}

		writeOK(ctx, stdCtx, "Label detached successfully", nil)
	})
}

func taskLabelParams(ctx *fasthttp.RequestCtx) (taskID, labelID uuid.UUID, err error) {
	taskID, err = pathParamUUID(ctx, "id")
	if err != nil {
		return
	}
	labelID, err = pathParamUUID(ctx, "labelId")
	return
}
