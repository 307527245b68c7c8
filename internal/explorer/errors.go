package explorer

import (
	"errors"
	"fmt"
)

// Kind identifies the stage of a selection query that failed
type Kind int

const (
	KindUnknown Kind = iota
	KindForeground
	KindInit
	KindCreation
	KindItemAccess
	KindInterfaceCast
	KindHandleQuery
	KindNotFound
	KindDocumentAccess
	KindSelectionAccess
	KindCount
	KindPathResolution
	KindApartment
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindForeground:
		return "FOREGROUND"
	case KindInit:
		return "INIT"
	case KindCreation:
		return "CREATION"
	case KindItemAccess:
		return "ITEM_ACCESS"
	case KindInterfaceCast:
		return "INTERFACE_CAST"
	case KindHandleQuery:
		return "HANDLE_QUERY"
	case KindNotFound:
		return "NOT_FOUND"
	case KindDocumentAccess:
		return "DOCUMENT_ACCESS"
	case KindSelectionAccess:
		return "SELECTION_ACCESS"
	case KindCount:
		return "COUNT"
	case KindPathResolution:
		return "PATH_RESOLUTION"
	case KindApartment:
		return "APARTMENT"
	default:
		return "UNKNOWN"
	}
}

// noIndex marks a QueryError that is not tied to a collection position
const noIndex = -1

// QueryError is a failure raised at its origin inside a selection query
type QueryError struct {
	Kind  Kind
	Index int
	Op    string
	Err   error
}

func newError(kind Kind, op string, err error) *QueryError {
	return &QueryError{Kind: kind, Index: noIndex, Op: op, Err: err}
}

func newIndexError(kind Kind, index int, op string, err error) *QueryError {
	return &QueryError{Kind: kind, Index: index, Op: op, Err: err}
}

// Error implements the error interface
func (e *QueryError) Error() string {
	msg := e.Op
	switch {
	case e.Err != nil && e.Op == "":
		msg = e.Err.Error()
	case e.Err != nil:
		msg = fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("index %d: %s", e.Index, msg)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a QueryError of the given kind
func IsKind(err error, kind Kind) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindUnknown when err is not a QueryError
func KindOf(err error) Kind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return KindUnknown
}

// KindName returns the failure stage name used in log fields
func (e *QueryError) KindName() string {
	return e.Kind.String()
}
