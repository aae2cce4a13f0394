package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ErrCodeUnknown},
		{"no rows", sql.ErrNoRows, ErrCodeNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), ErrCodeNotFound},
		{"tx done", sql.ErrTxDone, ErrCodeTransaction},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"fk message", errors.New("FOREIGN KEY constraint failed"), ErrCodeReferentialIntegrity},
		{"unique message", errors.New("UNIQUE constraint failed: Meta.key"), ErrCodeDuplicate},
		{"locked message", errors.New("database is locked"), ErrCodeBusy},
		{"missing table", errors.New("no such table: Meta"), ErrCodeSchema},
		{"repository error keeps code", NewRepositoryError("op", nil, ErrCodeSchemaVersion), ErrCodeSchemaVersion},
		{"other", errors.New("something"), ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWrapDatabaseError(t *testing.T) {
	if WrapDatabaseError("op", nil) != nil {
		t.Fatal("wrapping nil must return nil")
	}

	err := WrapDatabaseErrorWithContext("CreateAction", errors.New("database is locked"), map[string]string{"name": "read"})

	var repoErr *RepositoryError
	if !errors.As(err, &repoErr) {
		t.Fatalf("expected *RepositoryError, got %T", err)
	}
	if repoErr.Code != ErrCodeBusy || !repoErr.Retryable {
		t.Errorf("unexpected classification: %s retryable=%v", repoErr.Code, repoErr.Retryable)
	}
	if repoErr.Context["name"] != "read" {
		t.Error("context not carried over")
	}
}

func TestHandleReferentialIntegrityError(t *testing.T) {
	err := HandleReferentialIntegrityError("LoadHistory", "action", 12, "history")

	if !IsReferentialIntegrity(err) {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
	if !strings.Contains(err.Error(), "action with id 12 is referenced by a history entry but does not exist") {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestHandleSchemaVersionError(t *testing.T) {
	err := HandleSchemaVersionError("Setup", "7", "1")

	if !IsSchemaVersion(err) || IsRetryable(err) {
		t.Fatalf("unexpected classification for %v", err)
	}
}

func TestHandleConstructors(t *testing.T) {
	if !IsNotFound(HandleNotFound("op", "action", "1")) {
		t.Error("HandleNotFound must produce NOT_FOUND")
	}
	if !IsValidation(HandleValidationError("op", "name", "", "empty")) {
		t.Error("HandleValidationError must produce VALIDATION")
	}
	if !IsConnection(HandleConnectionError("op", "closed")) {
		t.Error("HandleConnectionError must produce CONNECTION")
	}
	if !IsTransaction(HandleTransactionError("op", "commit", errors.New("x"))) {
		t.Error("HandleTransactionError must produce TRANSACTION")
	}
}
