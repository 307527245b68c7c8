package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode classifies storage failures
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeNotFound
	ErrCodeDuplicate
	ErrCodeConstraint
	ErrCodeConnection
	ErrCodeTimeout
	ErrCodeBusy
	ErrCodeValidation
	ErrCodePermission
	ErrCodeDiskSpace
	ErrCodeCorruption
	ErrCodeSchema
	ErrCodeUnavailable
)

var codeNames = map[ErrorCode]string{
	ErrCodeNotFound:    "NOT_FOUND",
	ErrCodeDuplicate:   "DUPLICATE",
	ErrCodeConstraint:  "CONSTRAINT",
	ErrCodeConnection:  "CONNECTION",
	ErrCodeTimeout:     "TIMEOUT",
	ErrCodeBusy:        "BUSY",
	ErrCodeValidation:  "VALIDATION",
	ErrCodePermission:  "PERMISSION",
	ErrCodeDiskSpace:   "DISK_SPACE",
	ErrCodeCorruption:  "CORRUPTION",
	ErrCodeSchema:      "SCHEMA",
	ErrCodeUnavailable: "UNAVAILABLE",
}

// String returns a string representation of the error code
func (e ErrorCode) String() string {
	if name, ok := codeNames[e]; ok {
		return name
	}
	return "UNKNOWN"
}

// RepositoryError is a classified storage error with context and retry information
type RepositoryError struct {
	Op        string            // operation name
	Err       error             // underlying error
	Code      ErrorCode         // error classification
	Retryable bool              // whether retrying may succeed
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *RepositoryError) Error() string {
	if e == nil {
		return "repository error"
	}

	var parts []string
	if e.Op != "" {
		parts = append(parts, "op="+e.Op)
	}
	if e.Code != ErrCodeUnknown {
		parts = append(parts, "code="+e.Code.String())
	}
	if e.Retryable {
		parts = append(parts, "retryable=true")
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
	}

	msg := "repository error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if len(parts) == 0 {
		return msg
	}
	return fmt.Sprintf("%s [%s]", msg, strings.Join(parts, " "))
}

func (e *RepositoryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another RepositoryError by code, otherwise defers to the wrapped error
func (e *RepositoryError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*RepositoryError); ok {
		return e.Code == t.Code
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// IsRetryable returns whether the error is retryable
func (e *RepositoryError) IsRetryable() bool {
	return e != nil && e.Retryable
}

// GetCode returns the error code as a string for log fields
func (e *RepositoryError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error context, never nil
func (e *RepositoryError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return map[string]string{}
	}
	return e.Context
}

// GetTimestamp returns when the error was created
func (e *RepositoryError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// NewRepositoryError creates a new repository error with the given parameters
func NewRepositoryError(op string, err error, code ErrorCode) *RepositoryError {
	return &RepositoryError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableCode(code),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewRepositoryErrorWithContext creates a repository error carrying a copy of context
func NewRepositoryErrorWithContext(op string, err error, code ErrorCode, context map[string]string) *RepositoryError {
	repoErr := NewRepositoryError(op, err, code)
	for k, v := range context {
		repoErr.Context[k] = v
	}
	return repoErr
}

func isRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeConnection, ErrCodeTimeout, ErrCodeBusy:
		return true
	default:
		return false
	}
}

// CodeOf returns the classification of err, or ErrCodeUnknown
func CodeOf(err error) ErrorCode {
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.Code
	}
	return ErrCodeUnknown
}

// IsNotFound checks if the error is a "not found" error
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsDuplicate checks if the error is a uniqueness violation
func IsDuplicate(err error) bool { return CodeOf(err) == ErrCodeDuplicate }

// IsBusy checks if the error is a busy/locked error
func IsBusy(err error) bool { return CodeOf(err) == ErrCodeBusy }

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

// IsUnavailable checks if storage was never opened
func IsUnavailable(err error) bool { return CodeOf(err) == ErrCodeUnavailable }

// IsRetryable checks if the error is retryable
func IsRetryable(err error) bool {
	var repoErr *RepositoryError
	return errors.As(err, &repoErr) && repoErr.Retryable
}
