package perrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpStatusPerCode(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NewErrBadInput("bad", nil), http.StatusBadRequest},
		{NewErrUnauthenticated("no token", nil), http.StatusUnauthorized},
		{NewErrForbidden("nope", nil), http.StatusForbidden},
		{NewErrNotFound("missing", nil), http.StatusNotFound},
		{NewErrConflict("duplicate", nil), http.StatusConflict},
		{NewErrInternalServerError("boom", nil), http.StatusInternalServerError},
	}

	for _, c := range cases {
		var perr Err
		require.True(t, errors.As(c.err, &perr))
		assert.Equal(t, c.status, perr.HttpStatus())
	}
}

func TestErrorMessagePrefersWrappedError(t *testing.T) {
	err := NewErrNotFound("Task not found", errors.New("unknown task id"))
	assert.Equal(t, "unknown task id", err.Error())

	err = NewErrNotFound("Task not found", nil)
	assert.Equal(t, "Task not found", err.Error())
}

func TestHasCode(t *testing.T) {
	err := NewErrForbidden("nope", errors.New("not a member"))

	assert.True(t, HasCode(err, ErrCodeForbidden))
	assert.False(t, HasCode(err, ErrCodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeForbidden))
	assert.False(t, HasCode(nil, ErrCodeForbidden))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("driver says no")
	err := NewErrInternalServerError("boom", fmt.Errorf("shift failed: %w", cause))

	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, Err{}.Unwrap())
}

func TestWrapKeepsTypedErrors(t *testing.T) {
	typed := NewErrBadInput("bad", nil)
	assert.Equal(t, typed, Wrap("ignored", typed))

	wrapped := Wrap("boom", errors.New("raw"))
	assert.True(t, HasCode(wrapped, ErrCodeInternalServerError))
	assert.Equal(t, "raw", wrapped.Error())
}

func TestStacktraceCaptured(t *testing.T) {
	err := NewErrBadInput("bad", nil)

	var perr Err
	require.True(t, errors.As(err, &perr))
	assert.NotEmpty(t, perr.Stacktrace)
}

func TestArgsCarried(t *testing.T) {
	err := NewErrBadInput("bad", nil, map[string]interface{}{"position": 7})

	var perr Err
	require.True(t, errors.As(err, &perr))
	require.Len(t, perr.Args, 1)
	assert.Equal(t, 7, perr.Args[0]["position"])
}
