package distlink

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType: a value entering the graph is not nil, a scalar, a
	// *value.Object or a *value.List.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrTypeMismatch: a replacement value does not fit the shape of the link.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrNoSurfaceSelected: a binding was requested before Select.
	ErrNoSurfaceSelected = errors.New("no surface target selected")
	// ErrInvalidSurfaceTarget: the selected target cannot carry the binding.
	ErrInvalidSurfaceTarget = errors.New("invalid surface target")
	// ErrNotFound: the Surface could not resolve a query.
	ErrNotFound = errors.New("surface target not found")
	// ErrSessionClosed: the session was used after Close.
	ErrSessionClosed = errors.New("session closed")
	// ErrStopEach ends the current reconciliation pass when returned from an
	// EachFunc. It is not reported to the caller.
	ErrStopEach = errors.New("stop each")
)

// LinkError records the operation and link path an error surfaced at.
type LinkError struct {
	Op   string
	Path string
	Err  error
}

func (e *LinkError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

func linkErr(op, path string, err error) error {
	return &LinkError{Op: op, Path: path, Err: err}
}

func linkErrf(op, path string, sentinel error, format string, a ...any) error {
	return &LinkError{Op: op, Path: path, Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, a...))}
}

// IsTypeMismatch reports whether err carries ErrTypeMismatch.
func IsTypeMismatch(err error) bool { return errors.Is(err, ErrTypeMismatch) }

// IsNotFound reports whether err carries ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
