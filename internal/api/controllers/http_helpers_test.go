package controllers

import (
	"testing"

	"github.com/mosaicboards/mosaic/internal/perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func ctxWithURI(uri string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI(uri)
	return &ctx
}

func TestParsePageDefaults(t *testing.T) {
	offset, limit, err := parsePage(ctxWithURI("/api/board-server/projects"))
	require.NoError(t, err)
	assert.Equal(t, 0, offset)
	assert.Equal(t, defaultPageSize, limit)
}

func TestParsePageExplicitValues(t *testing.T) {
	offset, limit, err := parsePage(ctxWithURI("/api/board-server/projects?limit=50&offset=40"))
	require.NoError(t, err)
	assert.Equal(t, 40, offset)
	assert.Equal(t, 50, limit)

	offset, limit, err = parsePage(ctxWithURI("/api/board-server/projects?limit=1"))
	require.NoError(t, err)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 1, limit)
}

func TestParsePageRejectsBadLimit(t *testing.T) {
	for _, uri := range []string{
		"/p?limit=0",
		"/p?limit=51",
		"/p?limit=-5",
		"/p?limit=abc",
	} {
		_, _, err := parsePage(ctxWithURI(uri))
		require.Error(t, err, "uri %s", uri)
		assert.True(t, perrors.HasCode(err, perrors.ErrCodeBadInput))
	}
}

func TestParsePageRejectsBadOffset(t *testing.T) {
	for _, uri := range []string{
		"/p?offset=-1",
		"/p?offset=xyz",
	} {
		_, _, err := parsePage(ctxWithURI(uri))
		require.Error(t, err, "uri %s", uri)
		assert.True(t, perrors.HasCode(err, perrors.ErrCodeBadInput))
	}
}

func TestActorFromMissing(t *testing.T) {
	assert.Nil(t, actorFrom(ctxWithURI("/p")))
}

func TestPathParamUUID(t *testing.T) {
	ctx := ctxWithURI("/p")
	ctx.SetUserValue("id", "not-a-uuid")
	_, err := pathParamUUID(ctx, "id")
	assert.Error(t, err)

	_, err = pathParamUUID(ctxWithURI("/p"), "id")
	assert.Error(t, err)
}
