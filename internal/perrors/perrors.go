package perrors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

type ErrCode struct {
	Code   string `json:"code"`
	Status int    `json:"status"`
}

var (
	ErrCodeBadInput            ErrCode = ErrCode{"bad_input", http.StatusBadRequest}
	ErrCodeUnauthenticated             = ErrCode{"unauthenticated", http.StatusUnauthorized}
	ErrCodeForbidden                   = ErrCode{"forbidden", http.StatusForbidden}
	ErrCodeNotFound                    = ErrCode{"not_found", http.StatusNotFound}
	ErrCodeConflict                    = ErrCode{"conflict", http.StatusConflict}
	ErrCodeInternalServerError         = ErrCode{"internal_server_error", http.StatusInternalServerError}
)

type Err struct {
	Message    string                   `json:"-"`
	Err        string                   `json:"error"`
	Code       ErrCode                  `json:"-"`
	Cause      error                    `json:"-"`
	Stacktrace []string                 `json:"-"`
	Args       []map[string]interface{} `json:"args"`
}

func (e Err) Error() string {
	return e.Err
}

// Unwrap exposes the underlying error so callers can match driver errors
// (e.g. pq serialization failures) through errors.As.
func (e Err) Unwrap() error {
	return e.Cause
}

func (e Err) HttpStatus() int {
	return e.Code.Status
}

func (e Err) Print(ctx context.Context) {
	args := append([]any{}, slog.Any("error", e.Error()))
	if len(e.Args) > 0 {
		for k, v := range e.Args[0] {
			args = append(args, slog.Any(k, v))
		}
	}
	args = append(args, slog.Any("stacktrace", e.Stacktrace))
	slog.ErrorContext(ctx, e.Message, args...)
}

func New(code ErrCode, msg string, err error, args ...map[string]interface{}) error {
	pc := make([]uintptr, 20)
	count := runtime.Callers(1, pc)
	frames := runtime.CallersFrames(pc[:count])

	var stacktrace []string
	for frame, hasMore := frames.Next(); hasMore; frame, hasMore = frames.Next() {
		stacktrace = append(stacktrace, fmt.Sprintf("%s:%d", frame.File, frame.Line))
	}

	errString := msg
	if err != nil {
		errString = err.Error()
	}

	return Err{
		Code:       code,
		Message:    msg,
		Err:        errString,
		Cause:      err,
		Stacktrace: stacktrace,
		Args:       args,
	}
}

func NewErrBadInput(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeBadInput, msg, err, args...)
}

func NewErrUnauthenticated(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeUnauthenticated, msg, err, args...)
}

func NewErrForbidden(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeForbidden, msg, err, args...)
}

func NewErrNotFound(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeNotFound, msg, err, args...)
}

func NewErrConflict(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeConflict, msg, err, args...)
}

func NewErrInternalServerError(msg string, err error, args ...map[string]interface{}) error {
	return New(ErrCodeInternalServerError, msg, err, args...)
}

// Wrap keeps typed errors intact and wraps everything else as internal.
func Wrap(msg string, err error) error {
	var perr Err
	if errors.As(err, &perr) {
		return err
	}
	return NewErrInternalServerError(msg, err)
}

// HasCode reports whether err is a perrors.Err carrying the given code.
func HasCode(err error, code ErrCode) bool {
	var perr Err
	if errors.As(err, &perr) {
		return perr.Code.Code == code.Code
	}
	return false
}
