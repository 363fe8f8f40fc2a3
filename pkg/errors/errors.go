// Package errors provides structured error handling for setstate.
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
	// KindConfig indicates a recoverable misconfiguration, such as a
	// non-callable change callback.
	KindConfig
	// KindArgument indicates a value of the wrong dynamic type passed to a setter.
	KindArgument
	// KindEffect indicates a failure inside a change callback.
	KindEffect
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindArgument:
		return "argument"
	case KindEffect:
		return "effect"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// SetStateError represents a structured error reported by a state cell or its host.
type SetStateError struct {
	// Op is the operation that failed (e.g., "cell.New").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Cell is the diagnostic name of the cell, if any.
	Cell string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SetStateError) Error() string {
	if e.Cell != "" {
		return fmt.Sprintf("%s [%s] cell=%s: %v", e.Op, e.Kind, e.Cell, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SetStateError) Unwrap() error {
	return e.Err
}

// CallbackTypeError reports a change callback that cannot be called.
// Its message is the diagnostic emitted for the cell.
type CallbackTypeError struct {
	// Type is the Go type name of the offending callback value.
	Type string
}

func (e *CallbackTypeError) Error() string {
	return fmt.Sprintf("useSetState: function type for callback argument expected. Found callback of type %q", e.Type)
}

// ArgumentError reports a setter argument that is neither a value nor an
// updater of the cell's type.
type ArgumentError struct {
	// Op is the operation that received the argument.
	Op string
	// Want is the expected value type name.
	Want string
	// Got is the actual argument.
	Got any
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: expected %s or func(%s) %s, got %T", e.Op, e.Want, e.Want, e.Want, e.Got)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.Run").
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

// EffectError represents a change callback that panicked during stabilization.
type EffectError struct {
	// Cell is the diagnostic name of the cell whose callback failed.
	Cell string
	// Recovered is the panic value.
	Recovered any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *EffectError) Error() string {
	if e.Cell != "" {
		return fmt.Sprintf("panic in change callback of %s: %v", e.Cell, e.Recovered)
	}
	return fmt.Sprintf("panic in change callback: %v", e.Recovered)
}

// ErrorHandler receives errors reported by cells and hosts.
type ErrorHandler interface {
	// HandleError is called when an error or diagnostic is reported.
	HandleError(err *SetStateError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleEffectError is called when a change callback panics.
	HandleEffectError(err *EffectError)
}
