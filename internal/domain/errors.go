package domain

import (
	"context"
	"errors"
	"fmt"
)

// The drawing core itself never fails; these sentinels belong to the layers
// that feed it (config loading, event scripts, terminal host).
var (
	ErrInvalidInput   = fmt.Errorf("invalid input")
	ErrInvalidScript  = fmt.Errorf("invalid event script")
	ErrUnknownMessage = fmt.Errorf("unknown message kind")
	ErrConfigLoad     = fmt.Errorf("failed to load configuration")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Script.Parse")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for logs.
type ErrorCode string

const (
	CodeUnknown        ErrorCode = "UNKNOWN"
	CodeInvalidInput   ErrorCode = "INVALID_INPUT"
	CodeInvalidScript  ErrorCode = "INVALID_SCRIPT"
	CodeUnknownMessage ErrorCode = "UNKNOWN_MESSAGE"
	CodeConfigLoad     ErrorCode = "CONFIG_LOAD"
	CodeCancelled      ErrorCode = "CANCELLED"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrInvalidInput:   CodeInvalidInput,
	ErrInvalidScript:  CodeInvalidScript,
	ErrUnknownMessage: CodeUnknownMessage,
	ErrConfigLoad:     CodeConfigLoad,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancelled
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	return ErrorCodeOf(e.Err)
}
