package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the ingestion and retrieval paths.
type ErrorKind string

const (
	KindDecode      ErrorKind = "decode"
	KindUpload      ErrorKind = "upload"
	KindPersistence ErrorKind = "persistence"
	KindInvalid     ErrorKind = "invalid"
	KindNotFound    ErrorKind = "not_found"
)

// Error is a failure tagged with its kind and the operation that raised it.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with kind and op. A nil err yields nil.
func NewError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// DecodeError reports a malformed inline payload.
func DecodeError(op string, err error) error { return NewError(KindDecode, op, err) }

// UploadError reports an object store failure.
func UploadError(op string, err error) error { return NewError(KindUpload, op, err) }

// PersistenceError reports a relational store failure.
func PersistenceError(op string, err error) error { return NewError(KindPersistence, op, err) }

// InvalidInput reports a request the boundary refuses to execute.
func InvalidInput(op string, format string, args ...interface{}) error {
	return &Error{Kind: KindInvalid, Op: op, Err: fmt.Errorf(format, args...)}
}

// NotFound reports a missing dataset or entry.
func NotFound(op string, err error) error { return NewError(KindNotFound, op, err) }

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
