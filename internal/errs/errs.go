// Package errs classifies failures raised while transforming images.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a failure.
type Kind string

const (
	KindConfiguration     Kind = "configuration"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindCorruptData       Kind = "corrupt_data"
	KindEncode            Kind = "encode"
	KindCancelled         Kind = "cancelled"
	KindInternal          Kind = "internal"
)

func (k Kind) String() string { return string(k) }

// Error carries a Kind together with the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against another *Error of the same Kind, so
// errors.Is(err, &Error{Kind: KindCorruptData}) works without an Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// New wraps err with kind and op. A nil err is allowed.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds an error of kind from a format string.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Configuration is shorthand for a configuration error.
func Configuration(op, format string, args ...any) *Error {
	return Newf(KindConfiguration, op, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when none is present.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
