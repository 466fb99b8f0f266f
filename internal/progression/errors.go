package progression

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-checkable category of a rejection. Every
// rejection carries one, so callers and tests assert on cause rather
// than message text.
type ErrorKind string

const (
	KindOnHold           ErrorKind = "on_hold"
	KindBackwardMove     ErrorKind = "backward_move"
	KindSkippedSubstage  ErrorKind = "skipped_substage"
	KindForwardOnly      ErrorKind = "forward_only"
	KindAlreadyCompleted ErrorKind = "already_completed"
	KindUnknownSubstage  ErrorKind = "unknown_substage"
	KindOutOfRange       ErrorKind = "out_of_range"
	KindValidation       ErrorKind = "validation"
	KindForbidden        ErrorKind = "forbidden"
	KindNotFound         ErrorKind = "not_found"
)

// Error is a rejected transition. Rejections are always synchronous,
// never retried by the engine, and leave state untouched.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the rejection kind, or "" for any other error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a rejection of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
