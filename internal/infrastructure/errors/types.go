package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode classifies store failures
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeNotFound
	ErrCodeDuplicate
	ErrCodeConstraint
	ErrCodeReferentialIntegrity
	ErrCodeConnection
	ErrCodeTransaction
	ErrCodeTimeout
	ErrCodeBusy
	ErrCodeRetryable
	ErrCodeValidation
	ErrCodePermission
	ErrCodeDiskSpace
	ErrCodeCorruption
	ErrCodeInternal
	ErrCodeSchema
	ErrCodeSchemaVersion
)

var codeNames = map[ErrorCode]string{
	ErrCodeNotFound:             "NOT_FOUND",
	ErrCodeDuplicate:            "DUPLICATE",
	ErrCodeConstraint:           "CONSTRAINT",
	ErrCodeReferentialIntegrity: "REFERENTIAL_INTEGRITY",
	ErrCodeConnection:           "CONNECTION",
	ErrCodeTransaction:          "TRANSACTION",
	ErrCodeTimeout:              "TIMEOUT",
	ErrCodeBusy:                 "BUSY",
	ErrCodeRetryable:            "RETRYABLE",
	ErrCodeValidation:           "VALIDATION",
	ErrCodePermission:           "PERMISSION",
	ErrCodeDiskSpace:            "DISK_SPACE",
	ErrCodeCorruption:           "CORRUPTION",
	ErrCodeInternal:             "INTERNAL",
	ErrCodeSchema:               "SCHEMA",
	ErrCodeSchemaVersion:        "SCHEMA_VERSION",
}

func (e ErrorCode) String() string {
	if name, ok := codeNames[e]; ok {
		return name
	}
	return "UNKNOWN"
}

// RepositoryError is the error returned by every store operation
type RepositoryError struct {
	Op        string            // operation name
	Err       error             // underlying error
	Code      ErrorCode         // classification
	Retryable bool              // whether repeating the operation may succeed
	Context   map[string]string // additional key/value details
	Timestamp time.Time
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
	return msg + " [" + strings.Join(parts, " ") + "]"
}

func (e *RepositoryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another RepositoryError by code, or the wrapped error
func (e *RepositoryError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*RepositoryError); ok {
		return e.Code == t.Code
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// IsRetryable reports whether the operation may succeed when repeated
func (e *RepositoryError) IsRetryable() bool {
	return e != nil && e.Retryable
}

// GetCode returns the code name (used by the logging package)
func (e *RepositoryError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error details (used by the logging package)
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

// WithContext adds a detail to the error. Not safe once the error is shared
// between goroutines.
func (e *RepositoryError) WithContext(key, value string) *RepositoryError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// NewRepositoryError creates a classified store error
func NewRepositoryError(op string, err error, code ErrorCode) *RepositoryError {
	return &RepositoryError{
		Op:        op,
		Err:       err,
		Code:      code,
		Retryable: isRetryableError(code, err),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewRepositoryErrorWithContext creates a classified store error carrying a copy of context
func NewRepositoryErrorWithContext(op string, err error, code ErrorCode, context map[string]string) *RepositoryError {
	repoErr := NewRepositoryError(op, err, code)
	for k, v := range context {
		repoErr.Context[k] = v
	}
	return repoErr
}

func isRetryableError(code ErrorCode, err error) bool {
	switch code {
	case ErrCodeConnection, ErrCodeTimeout, ErrCodeTransaction, ErrCodeBusy, ErrCodeRetryable:
		return true
	case ErrCodeUnknown:
		if err == nil {
			return false
		}
		msg := strings.ToLower(err.Error())
		return strings.Contains(msg, "busy") || strings.Contains(msg, "locked") || strings.Contains(msg, "temporary")
	default:
		return false
	}
}

func hasCode(err error, code ErrorCode) bool {
	var repoErr *RepositoryError
	return errors.As(err, &repoErr) && repoErr.Code == code
}

// IsNotFound reports whether err is a NOT_FOUND store error
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsDuplicate reports whether err is a DUPLICATE store error
func IsDuplicate(err error) bool { return hasCode(err, ErrCodeDuplicate) }

// IsConstraint reports whether err is a generic constraint violation
func IsConstraint(err error) bool { return hasCode(err, ErrCodeConstraint) }

// IsReferentialIntegrity reports whether err is caused by a reference to a
// missing action or subject
func IsReferentialIntegrity(err error) bool { return hasCode(err, ErrCodeReferentialIntegrity) }

// IsConnection reports whether err is a CONNECTION store error
func IsConnection(err error) bool { return hasCode(err, ErrCodeConnection) }

// IsTransaction reports whether err is a TRANSACTION store error
func IsTransaction(err error) bool { return hasCode(err, ErrCodeTransaction) }

// IsBusy reports whether err is caused by a locked database
func IsBusy(err error) bool { return hasCode(err, ErrCodeBusy) }

// IsSchemaVersion reports whether err reports an unrecognized schema version
func IsSchemaVersion(err error) bool { return hasCode(err, ErrCodeSchemaVersion) }

// IsValidation reports whether err is a VALIDATION error
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsRetryable reports whether err is a retryable store error
func IsRetryable(err error) bool {
	var repoErr *RepositoryError
	return errors.As(err, &repoErr) && repoErr.Retryable
}
