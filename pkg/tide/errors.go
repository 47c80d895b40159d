package tide

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrClosed is the underlying error for operations attempted on a closed
// container. Emit returns it to direct callers; within the event pipeline
// it is reported through the observer chain instead.
var ErrClosed = errors.New("container is closed")

// ErrorKind identifies the category of a reported error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindClosed indicates an emit or add after the container closed.
	KindClosed
	// KindUnhandled indicates an event with no registered handler.
	KindUnhandled
	// KindHandler indicates an error returned by an event handler.
	KindHandler
	// KindPanic indicates a panic recovered from an event handler.
	KindPanic
	// KindObserver indicates a panic recovered from an observer hook.
	KindObserver
)

func (k ErrorKind) String() string {
	switch k {
	case KindClosed:
		return "closed"
	case KindUnhandled:
		return "unhandled"
	case KindHandler:
		return "handler"
	case KindPanic:
		return "panic"
	case KindObserver:
		return "observer"
	default:
		return "unknown"
	}
}

// Error is a structured error reported to the observer chain.
type Error struct {
	// Op is the operation that failed (e.g., "bloc.Add").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Container identifies the originating container.
	Container string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("%s [%s] container=%s: %v", e.Op, e.Kind, e.Container, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError represents a panic recovered from an event handler.
type PanicError struct {
	// Op is the operation that panicked, typically the event type.
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// captureStack returns the current call stack as a string.
// It skips the first few frames to exclude the capture itself.
func captureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteString(":")
		sb.WriteString(fmt.Sprintf("%d", frame.Line))
		sb.WriteString("\n")
		if !more {
			break
		}
	}
	return sb.String()
}
