// Package syncerr defines the failure kinds a reconciliation can run into.
// Call sites branch on Kind instead of matching messages.
package syncerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Unknown            Kind = "Unknown"
	SourceUnavailable  Kind = "SourceUnavailable"
	ManagerUnavailable Kind = "ManagerUnavailable"
	ParseFailure       Kind = "ParseFailure"
	NotFound           Kind = "NotFound"
	AddRejected        Kind = "AddRejected"
	KindMismatch       Kind = "KindMismatch"
)

// Error is a failure tagged with its Kind
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "radarr.lookup"
	Op  string
	Err error
	// Response holds the remote body attached to AddRejected failures
	Response []byte
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E tags err with kind
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Rejected builds an AddRejected failure carrying the manager response
func Rejected(op string, err error, response []byte) error {
	return &Error{Kind: AddRejected, Op: op, Err: err, Response: response}
}

// KindOf returns the kind of the outermost tagged error in err's chain
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is tagged with kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Response returns the remote response attached to err, if any
func Response(err error) []byte {
	var e *Error
	if errors.As(err, &e) {
		return e.Response
	}
	return nil
}
