package dockyard

import (
	"errors"
	"fmt"
)

// Kind classifies a dockyard error the way the spec's error taxonomy
// (section 7) does, so callers can branch on category without parsing
// message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindResourceInit
	KindShuttingDown
	KindInterrupted
	KindSessionFull
	KindDuplicateName
	KindQueueFull
	KindQuotaExceeded
	KindInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case KindResourceInit:
		return "resource_init"
	case KindShuttingDown:
		return "shutting_down"
	case KindInterrupted:
		return "interrupted"
	case KindSessionFull:
		return "session_full"
	case KindDuplicateName:
		return "duplicate_name"
	case KindQueueFull:
		return "queue_full"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// Error is dockyard's structured error type: it carries the operation that
// failed, the role that observed it, a Kind for programmatic dispatch, the
// underlying errno (if any), and the wrapped cause.
type Error struct {
	Op    string
	Role  string
	Kind  Kind
	Errno error
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		if e.Role != "" {
			return fmt.Sprintf("dockyard: %s[%s]: %s: %s", e.Op, e.Role, e.Kind, e.Msg)
		}
		return fmt.Sprintf("dockyard: %s: %s: %s", e.Op, e.Kind, e.Msg)
	}
	if e.Inner != nil {
		return fmt.Sprintf("dockyard: %s: %s: %v", e.Op, e.Kind, e.Inner)
	}
	return fmt.Sprintf("dockyard: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Inner }

// Is reports equality by Kind, matching the teacher's *Error.Is that lets
// errors.Is(err, &Error{Kind: KindX}) work without comparing every field.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// NewError builds an *Error for op/kind with a formatted message.
func NewError(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError wraps cause under op/kind, preserving it for errors.Unwrap.
func WrapError(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Inner: cause}
}

// NewRoleError attaches the reporting role process to an error, used by
// role binaries so logs and terminal output can show which process failed.
func NewRoleError(op, role string, kind Kind, cause error) *Error {
	return &Error{Op: op, Role: role, Kind: kind, Inner: cause}
}

// IsKind reports whether the outermost dockyard *Error in err's chain is of
// kind; a *Error of kind wrapped inside another *Error is not matched.
func IsKind(err error, kind Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
