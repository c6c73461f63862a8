package spiflashcb

import (
	"errors"
	"fmt"
)

// Kind is a high-level error category, mirroring the driver's error bitset.
// Exactly one Kind is latched on a *Driver at a time: a new error replaces
// the previous one, and the latch is cleared only by Init or ClearError.
type Kind string

const (
	KindOK            Kind = "ok"
	KindNoFlash       Kind = "no flash"
	KindMemory        Kind = "memory"
	KindFlashFull     Kind = "flash full"
	KindWorkerBusy    Kind = "worker busy"
	KindNoQueue       Kind = "no queue"
	KindWorkerRequest Kind = "worker request"
	KindQueueEmpty    Kind = "queue empty"
)

// Error is a structured driver error carrying the operation, the queue it
// applies to (if any), and the latched Kind.
type Error struct {
	Op   string // operation that failed, e.g. "Add", "MkCB", "GetLast"
	CbID int    // queue handle (-1 if not applicable)
	Kind Kind
	Msg  string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.CbID >= 0 {
		return fmt.Sprintf("spiflashcb: %s: cb=%d: %s", e.Op, e.CbID, msg)
	}
	return fmt.Sprintf("spiflashcb: %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

// Is supports errors.Is comparison against the sentinel Err* values and
// against other *Error values by Kind.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Kind == te.Kind
	}
	if k, ok := target.(kindSentinel); ok {
		return e.Kind == Kind(k)
	}
	return false
}

// kindSentinel lets the package-level Err* sentinels below participate in
// errors.Is without exposing Kind comparison as a public error type.
type kindSentinel Kind

func (k kindSentinel) Error() string { return string(k) }

// Sentinels for errors.Is(err, spiflashcb.ErrWorkerBusy) style checks.
var (
	ErrNoFlash       error = kindSentinel(KindNoFlash)
	ErrMemory        error = kindSentinel(KindMemory)
	ErrFlashFull     error = kindSentinel(KindFlashFull)
	ErrWorkerBusy    error = kindSentinel(KindWorkerBusy)
	ErrNoQueue       error = kindSentinel(KindNoQueue)
	ErrWorkerRequest error = kindSentinel(KindWorkerRequest)
	ErrQueueEmpty    error = kindSentinel(KindQueueEmpty)
)

// NewError creates a structured error not tied to a specific queue.
func NewError(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, CbID: -1, Kind: kind, Msg: msg}
}

// NewQueueError creates a structured error scoped to a queue handle.
func NewQueueError(op string, cbID int, kind Kind, msg string) *Error {
	return &Error{Op: op, CbID: cbID, Kind: kind, Msg: msg}
}

// WrapError re-tags an existing error under a new operation name, preserving
// its Kind when the inner error is already a *Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if se, ok := inner.(*Error); ok {
		return &Error{Op: op, CbID: se.CbID, Kind: se.Kind, Msg: se.Msg, Inner: se.Inner}
	}
	return &Error{Op: op, CbID: -1, Kind: KindMemory, Msg: inner.Error(), Inner: inner}
}

// IsKind reports whether err is a *Error (at any wrap depth) with the given Kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
