package errors

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrPersistenceUnavailable is the cause of every ErrCodeUnavailable error
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// ClassifyError maps a database error to an ErrorCode, preferring the
// driver's typed codes over message matching.
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}
	if code := classifySQLiteError(err); code != ErrCodeUnknown {
		return code
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrCodeNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	case errors.Is(err, sql.ErrConnDone):
		return ErrCodeConnection
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "unique constraint"):
		return ErrCodeDuplicate
	case strings.Contains(errStr, "constraint failed"):
		return ErrCodeConstraint
	case strings.Contains(errStr, "database is locked"):
		return ErrCodeBusy
	case strings.Contains(errStr, "no such table"), strings.Contains(errStr, "no such column"):
		return ErrCodeSchema
	case strings.Contains(errStr, "disk image is malformed"):
		return ErrCodeCorruption
	case strings.Contains(errStr, "no space left"), strings.Contains(errStr, "disk full"):
		return ErrCodeDiskSpace
	default:
		return ErrCodeUnknown
	}
}

// classifySQLiteError reads sqlite3.Error codes. Returns ErrCodeUnknown for other errors.
func classifySQLiteError(err error) ErrorCode {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return ErrCodeUnknown
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return ErrCodeDuplicate
	case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return ErrCodeConstraint
	}

	switch sqliteErr.Code {
	case sqlite3.ErrConstraint:
		return ErrCodeConstraint
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return ErrCodeBusy
	case sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
		return ErrCodeCorruption
	case sqlite3.ErrPerm, sqlite3.ErrAuth, sqlite3.ErrReadonly:
		return ErrCodePermission
	case sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
		return ErrCodeConnection
	case sqlite3.ErrFull:
		return ErrCodeDiskSpace
	case sqlite3.ErrSchema:
		return ErrCodeSchema
	default:
		return ErrCodeUnknown
	}
}

// WrapDatabaseError classifies err and wraps it with the operation and context.
// Returns nil for a nil err.
func WrapDatabaseError(op string, err error, context map[string]string) error {
	if err == nil {
		return nil
	}
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return err
	}
	return NewRepositoryErrorWithContext(op, err, ClassifyError(err), context)
}

// HandleNotFound creates a standardized not found error
func HandleNotFound(op, resource, identifier string) error {
	return NewRepositoryErrorWithContext(op, sql.ErrNoRows, ErrCodeNotFound, map[string]string{
		"resource":   resource,
		"identifier": identifier,
	})
}

// HandleValidationError creates a standardized validation error
func HandleValidationError(op, field, value, reason string) error {
	return NewRepositoryErrorWithContext(op, errors.New("validation failed"), ErrCodeValidation, map[string]string{
		"field":  field,
		"value":  value,
		"reason": reason,
	})
}

// HandleDuplicateError creates a standardized uniqueness violation
func HandleDuplicateError(op, resource, field, value string) error {
	return NewRepositoryErrorWithContext(op, errors.New("duplicate entry"), ErrCodeDuplicate, map[string]string{
		"resource": resource,
		"field":    field,
		"value":    value,
	})
}

// HandleUnavailable creates the error returned while storage is not open
func HandleUnavailable(op string) error {
	return NewRepositoryError(op, ErrPersistenceUnavailable, ErrCodeUnavailable)
}
