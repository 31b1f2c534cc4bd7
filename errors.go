package switchboard

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is the single "peer gone" condition. Every error returned
	// because a center, a phone or a response channel went away matches it
	// with errors.Is.
	ErrClosed = errors.New("switchboard: closed")

	ErrInvalidCfg       = errors.New("switchboard: invalid options")
	ErrAlreadyAnswered  = errors.New("switchboard: request already answered")
	ErrReplyFailed      = errors.New("switchboard: could not deliver reply")
	ErrNotRouted        = errors.New("switchboard: no handler for operation")
	ErrRouterIncomplete = errors.New("switchboard: router does not cover the catalog")
)

const (
	ClosedByUnknown ClosedBy = iota
	// ClosedByCenter means the center stopped consuming its queue.
	ClosedByCenter
	// ClosedByUnanswered means the request was dropped without a reply.
	ClosedByUnanswered
	// ClosedByCaller means the caller no longer waits for a reply.
	ClosedByCaller
)

type ClosedBy uint8

func (cause ClosedBy) String() string {
	switch cause {
	case ClosedByCenter:
		return "center"
	case ClosedByUnanswered:
		return "unanswered request"
	case ClosedByCaller:
		return "caller"
	default:
		return "unknown"
	}
}

func (cause ClosedBy) labelValue() string {
	switch cause {
	case ClosedByCenter:
		return "center"
	case ClosedByUnanswered:
		return "unanswered"
	case ClosedByCaller:
		return "caller"
	default:
		return "unknown"
	}
}

// ClosedError is the concrete type behind ErrClosed.
type ClosedError struct {
	cause ClosedBy
	msg   string
}

func closedBy(cause ClosedBy, msg string) *ClosedError {
	return &ClosedError{cause: cause, msg: msg}
}

func (closedErr *ClosedError) Error() string {
	return fmt.Sprintf("%s by %s: %s", ErrClosed, closedErr.cause, closedErr.msg)
}

func (closedErr *ClosedError) Is(target error) bool {
	return target == ErrClosed
}

func (closedErr *ClosedError) Cause() ClosedBy {
	return closedErr.cause
}

// IsClosedBy reports whether err is a ClosedError with the given cause.
func IsClosedBy(err error, cause ClosedBy) bool {
	var closedErr *ClosedError
	return errors.As(err, &closedErr) && closedErr.cause == cause
}
