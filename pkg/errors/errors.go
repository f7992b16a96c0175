// Package errors provides structured error handling for the fiber runtime.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPlatform indicates a platform loop or surface error.
	KindPlatform
	// KindInit indicates an initialization error.
	KindInit
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindContract indicates a programming contract violation.
	KindContract
	// KindAsync indicates a failure in queued asynchronous work.
	KindAsync
)

func (k ErrorKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindInit:
		return "init"
	case KindPanic:
		return "panic"
	case KindContract:
		return "contract"
	case KindAsync:
		return "async"
	default:
		return "unknown"
	}
}

// FiberError represents a structured error in the runtime.
type FiberError struct {
	// Op is the operation that failed (e.g., "platform.Terminal.Init").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *FiberError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *FiberError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.Worker.handle").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ViewError represents a recovered failure inside a component view function.
type ViewError struct {
	// Tag is the type tag of the component whose view failed.
	Tag string
	// ID is the identity of the component node.
	ID uint64
	// Recovered is the panic value.
	Recovered any
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ViewError) Error() string {
	return fmt.Sprintf("panic in %s.View() (id %d): %v", e.Tag, e.ID, e.Recovered)
}

// ContractError describes a programming error: a mismatch between what a
// component declares and how it is used at runtime. It is always raised with
// panic and must not be recovered by the runtime.
type ContractError struct {
	// Op names the check that failed (e.g., "core.Reconcile").
	Op string
	// Tag is the component or element tag involved, if any.
	Tag string
	// Detail describes the violation.
	Detail string
}

func (e *ContractError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("contract violation in %s (%s): %s", e.Op, e.Tag, e.Detail)
	}
	return fmt.Sprintf("contract violation in %s: %s", e.Op, e.Detail)
}

// Violation panics with a ContractError.
func Violation(op, tag, format string, args ...any) {
	panic(&ContractError{Op: op, Tag: tag, Detail: fmt.Sprintf(format, args...)})
}

// IsContract reports whether a recovered panic value is a contract violation.
func IsContract(r any) bool {
	_, ok := r.(*ContractError)
	return ok
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *FiberError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleViewError is called when a component view panics.
	HandleViewError(err *ViewError)
}
