package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ClassifyError maps a driver or library error to an ErrorCode
func ClassifyError(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}

	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.Code
	}

	if code := classifySQLiteError(err); code != ErrCodeUnknown {
		return code
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrCodeNotFound
	case errors.Is(err, sql.ErrTxDone):
		return ErrCodeTransaction
	case errors.Is(err, sql.ErrConnDone):
		return ErrCodeConnection
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrCodeTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "foreign key constraint"):
		return ErrCodeReferentialIntegrity
	case strings.Contains(msg, "unique constraint"):
		return ErrCodeDuplicate
	case strings.Contains(msg, "constraint failed"):
		return ErrCodeConstraint
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "database is busy"):
		return ErrCodeBusy
	case strings.Contains(msg, "malformed"):
		return ErrCodeCorruption
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"):
		return ErrCodeSchema
	case strings.Contains(msg, "permission denied"):
		return ErrCodePermission
	case strings.Contains(msg, "no space left"), strings.Contains(msg, "disk full"):
		return ErrCodeDiskSpace
	default:
		return ErrCodeUnknown
	}
}

// WrapDatabaseError wraps err into a classified RepositoryError
func WrapDatabaseError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewRepositoryError(op, err, ClassifyError(err))
}

// WrapDatabaseErrorWithContext wraps err into a classified RepositoryError with details
func WrapDatabaseErrorWithContext(op string, err error, contextMap map[string]string) error {
	if err == nil {
		return nil
	}
	return NewRepositoryErrorWithContext(op, err, ClassifyError(err), contextMap)
}

// HandleNotFound reports a missing row
func HandleNotFound(op, resource, identifier string) error {
	return NewRepositoryErrorWithContext(op, sql.ErrNoRows, ErrCodeNotFound, map[string]string{
		"resource":   resource,
		"identifier": identifier,
	})
}

// HandleValidationError reports an invalid argument
func HandleValidationError(op, field, value, reason string) error {
	return NewRepositoryErrorWithContext(op, errors.New("validation failed: "+reason), ErrCodeValidation, map[string]string{
		"field": field,
		"value": value,
	})
}

// HandleConnectionError reports an unusable connection
func HandleConnectionError(op, details string) error {
	return NewRepositoryErrorWithContext(op, errors.New("connection error"), ErrCodeConnection, map[string]string{
		"details": details,
	})
}

// HandleTransactionError reports a failure in a transaction phase
func HandleTransactionError(op, phase string, err error) error {
	return NewRepositoryErrorWithContext(op, err, ErrCodeTransaction, map[string]string{
		"phase": phase,
	})
}

// HandleReferentialIntegrityError reports a row referencing a missing action or subject
func HandleReferentialIntegrityError(op, resource string, id int64, owner string) error {
	err := fmt.Errorf("%s with id %d is referenced by a %s entry but does not exist", resource, id, owner)
	return NewRepositoryErrorWithContext(op, err, ErrCodeReferentialIntegrity, map[string]string{
		"resource":   resource,
		"identifier": fmt.Sprint(id),
	})
}

// HandleSchemaVersionError reports a stored schema version this build does not understand
func HandleSchemaVersionError(op, found, expected string) error {
	err := fmt.Errorf("unknown schema version %q", found)
	return NewRepositoryErrorWithContext(op, err, ErrCodeSchemaVersion, map[string]string{
		"found":    found,
		"expected": expected,
	})
}
