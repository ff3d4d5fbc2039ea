package geo

import (
	"errors"
	"fmt"
)

// Kind classifies the failures of the lookup engine, the auth gate and the
// update coordinator.
type Kind uint8

// Kind values.  The zero value is KindUnknown and is never attached to an
// *Error built by this package.
const (
	KindUnknown Kind = iota
	KindNotInitialized
	KindInvalidQuery
	KindLookupFailed
	KindRecordIncomplete
	KindNotFound
	KindUnauthorized
	KindEncodeFailed
	KindRefreshSubResourceFailed
)

// String implements the fmt.Stringer interface for Kind.
func (k Kind) String() string {
	switch k {
	case KindNotInitialized:
		return "not_initialized"
	case KindInvalidQuery:
		return "invalid_query"
	case KindLookupFailed:
		return "lookup_failed"
	case KindRecordIncomplete:
		return "record_incomplete"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindEncodeFailed:
		return "encode_failed"
	case KindRefreshSubResourceFailed:
		return "refresh_sub_resource_failed"
	default:
		return "unknown"
	}
}

// Sentinel errors for use with errors.Is.  They match any *Error of the same
// kind.
var (
	ErrNotInitialized           = &Error{Kind: KindNotInitialized}
	ErrInvalidQuery             = &Error{Kind: KindInvalidQuery}
	ErrLookupFailed             = &Error{Kind: KindLookupFailed}
	ErrRecordIncomplete         = &Error{Kind: KindRecordIncomplete}
	ErrNotFound                 = &Error{Kind: KindNotFound}
	ErrUnauthorized             = &Error{Kind: KindUnauthorized}
	ErrEncodeFailed             = &Error{Kind: KindEncodeFailed}
	ErrRefreshSubResourceFailed = &Error{Kind: KindRefreshSubResourceFailed}
)

// Error is a classified failure.
type Error struct {
	// Kind is the failure class.
	Kind Kind
	// Op names the operation or resource that failed, e.g. "city_by_ip".
	Op string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface for *Error.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
