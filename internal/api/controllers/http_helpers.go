package controllers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/mosaicboards/mosaic/internal/api/response"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/valyala/fasthttp"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// requestContext returns a baseline context for handlers. fasthttp does not provide
// a standard context, so we start from Background for downstream calls.
func requestContext(ctx *fasthttp.RequestCtx) context.Context {
	if traceCtx, ok := ctx.UserValue("traceCtx").(context.Context); ok {
		return traceCtx
	}
	return context.Background()
}

// actorFrom returns the identity the auth middleware resolved, or nil for
// anonymous requests. Services treat nil as unauthenticated.
func actorFrom(ctx *fasthttp.RequestCtx) *authz.Actor {
	actor, _ := ctx.UserValue("actor").(*authz.Actor)
	return actor
}

func parseBody(ctx *fasthttp.RequestCtx, target any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return errors.New("request body is empty")
	}

	return json.Unmarshal(body, target)
}

func writeError(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, err error) {
	response.NewResponse[any](stdCtx, message, nil).WithError(err).Write(ctx)
}

func writeOK(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any) {
	response.NewResponse(stdCtx, message, data).Write(ctx)
}

func pathParam(ctx *fasthttp.RequestCtx, key string) (string, error) {
	val := ctx.UserValue(key)
	if val == nil {
		return "", fmt.Errorf("%s is required", key)
	}

	return fmt.Sprint(val), nil
}

func pathParamUUID(ctx *fasthttp.RequestCtx, key string) (uuid.UUID, error) {
	val, err := pathParam(ctx, key)
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(val)
}

// parsePage reads offset/limit query parameters. Limit is clamped to
// [1, 50] with a default of 20; out-of-range or malformed values are
// rejected rather than silently adjusted.
func parsePage(ctx *fasthttp.RequestCtx) (offset, limit int, err error) {
	limit = defaultPageSize

	if raw := ctx.QueryArgs().Peek("limit"); len(raw) > 0 {
		limit, err = strconv.Atoi(string(raw))
		if err != nil || limit < 1 || limit > maxPageSize {
			return 0, 0, perrors.NewErrBadInput(
				fmt.Sprintf("limit must be an integer between 1 and %d", maxPageSize),
				errors.New("invalid limit parameter"))
		}
	}

	if raw := ctx.QueryArgs().Peek("offset"); len(raw) > 0 {
		offset, err = strconv.Atoi(string(raw))
		if err != nil || offset < 0 {
			return 0, 0, perrors.NewErrBadInput(
				"offset must be a non-negative integer",
				errors.New("invalid offset parameter"))
		}
	}

	return offset, limit, nil
}
