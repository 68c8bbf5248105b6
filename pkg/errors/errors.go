package errors

import "fmt"

// ErrorType classifies where in the conversion run a failure happened
type ErrorType string

const (
	ErrorTypeEncode     ErrorType = "encode"
	ErrorTypeCheckpoint ErrorType = "checkpoint"
	ErrorTypeResults    ErrorType = "results"
	ErrorTypeScan       ErrorType = "scan"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypePath       ErrorType = "path"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error carries the failing operation and path alongside the cause
type Error struct {
	Type ErrorType
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error: %s %s: %v", e.Type, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Type, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with type and operation details. A nil err yields nil.
func New(errorType ErrorType, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Type: errorType, Op: op, Path: path, Err: err}
}

// IsFatal reports whether an error type must terminate the run.
// Encode failures are recorded per file; checkpoint and results I/O failures
// are logged and the run continues.
func IsFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeEncode, ErrorTypeCheckpoint, ErrorTypeResults:
		return false
	case ErrorTypeScan, ErrorTypeConfig, ErrorTypePath:
		return true
	default:
		return true
	}
}
