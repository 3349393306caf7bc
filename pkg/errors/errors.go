package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCategory classifies the errors that can occur while writing a
// container. This helps in proper error handling, monitoring, and
// debugging of the system.
type ErrorCategory int

const (
	// ErrorParameter indicates an invalid configuration at construction
	// time, such as a frame size of zero or an out-of-range compression
	// level.
	ErrorParameter ErrorCategory = iota + 1

	// ErrorEngine indicates a failure reported by the compression engine
	// during a compress call or header finalization, such as a chunk
	// exceeding the configured frame size.
	ErrorEngine

	// ErrorSink indicates an I/O failure on the underlying sink,
	// propagated unchanged from the sink's position, write, or seek
	// operations.
	ErrorSink

	// ErrorMisuse indicates a protocol violation by the caller, such as
	// finalizing twice or writing after finalization. Misuse errors are
	// fatal to the current session; no partial-recovery path exists.
	ErrorMisuse

	// ErrorInternal indicates a broken internal invariant, such as the
	// finalized header not matching the length reserved at construction.
	// Finalization aborts before any rewind to avoid silently emitting a
	// corrupt container.
	ErrorInternal
)

// String returns the string representation of the error category.
// This is useful for logging, metrics, and error reporting.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorParameter:
		return "parameter"
	case ErrorEngine:
		return "engine"
	case ErrorSink:
		return "sink"
	case ErrorMisuse:
		return "misuse"
	case ErrorInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type CompressorError struct {
	Err       error
	Operation string
	Timestamp time.Time
	Category  ErrorCategory
}

// NewCompressorError wraps err with its category and the operation that
// produced it.
func NewCompressorError(category ErrorCategory, operation string, err error) *CompressorError {
	return &CompressorError{
		Err:       err,
		Category:  category,
		Operation: operation,
		Timestamp: time.Now(),
	}
}

func (e *CompressorError) Error() string {
	return fmt.Sprintf("[%v] %s: %v", e.Category, e.Operation, e.Err)
}

func (e *CompressorError) Unwrap() error {
	return e.Err
}

// IsRetryAble returns whether errors of this category can be retried.
// This helps callers decide whether to retry failed operations.
func (e *CompressorError) IsRetryAble() bool {
	switch e.Category {
	case ErrorSink:
		// Sink errors might be temporary (e.g., disk full, network issues).
		return true
	case ErrorParameter, ErrorEngine, ErrorMisuse, ErrorInternal:
		// The remaining categories are deterministic: retrying the same
		// call against the same session cannot succeed.
		return false
	default:
		return false
	}
}

// Category extracts the ErrorCategory from err, or 0 if err is not a
// CompressorError.
func Category(err error) ErrorCategory {
	var ce *CompressorError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return 0
}
