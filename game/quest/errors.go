package quest

import (
	"errors"
	"fmt"
)

// Code is the numeric error code reported to API callers.
type Code int

const (
	CodeInvalidRequest         Code = 100
	CodeUnknownQuestCategory   Code = 200
	CodeUnknownQuestDefinition Code = 201
	CodeQuestNotFound          Code = 202
	CodeInsufficientProgress   Code = 203
	CodeRewardGrantFailed      Code = 300
	CodeBusy                   Code = 301
)

// Error is a quest domain failure. Two errors match under errors.Is when
// their codes are equal, so callers compare against the Err* kinds below.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidRequest         = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrUnknownQuestCategory   = &Error{Code: CodeUnknownQuestCategory, Message: "unknown quest category"}
	ErrUnknownQuestDefinition = &Error{Code: CodeUnknownQuestDefinition, Message: "unknown quest definition"}
	ErrQuestNotFound          = &Error{Code: CodeQuestNotFound, Message: "quest not found"}
	ErrInsufficientProgress   = &Error{Code: CodeInsufficientProgress, Message: "insufficient progress"}
	ErrRewardGrantFailed      = &Error{Code: CodeRewardGrantFailed, Message: "reward grant failed"}
	ErrBusy                   = &Error{Code: CodeBusy, Message: "quest generation in progress"}
)

func newError(kind *Error, format string, args ...any) *Error {
	return &Error{Code: kind.Code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind *Error, err error) *Error {
	return &Error{Code: kind.Code, Message: kind.Message, Err: err}
}

// AsError extracts the domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var qe *Error
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
