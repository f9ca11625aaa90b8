package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so handlers can map them to HTTP
// statuses without string matching.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindValidation
	KindPermission
	KindConflict
	KindInvalidState
)

// DomainError is the error type surfaced by domain operations.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NotFoundError(format string, args ...any) error {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) error {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func PermissionError(format string, args ...any) error {
	return &DomainError{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

func ConflictError(format string, args ...any) error {
	return &DomainError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidStateError(format string, args ...any) error {
	return &DomainError{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the ErrorKind of err and true when err is a DomainError.
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
