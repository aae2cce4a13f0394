package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorCode_String(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeUnknown:              "UNKNOWN",
		ErrCodeNotFound:             "NOT_FOUND",
		ErrCodeReferentialIntegrity: "REFERENTIAL_INTEGRITY",
		ErrCodeSchemaVersion:        "SCHEMA_VERSION",
		ErrCodeBusy:                 "BUSY",
		ErrorCode(999):              "UNKNOWN",
	}

	for code, want := range tests {
		if got := code.String(); got != want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", int(code), got, want)
		}
	}
}

func TestRepositoryError_Error(t *testing.T) {
	err := NewRepositoryErrorWithContext("AddSession", errors.New("boom"), ErrCodeReferentialIntegrity, map[string]string{
		"subject": "7",
		"action":  "3",
	})

	want := "boom [op=AddSession code=REFERENTIAL_INTEGRITY action=3 subject=7]"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var nilErr *RepositoryError
	if got := nilErr.Error(); got != "repository error" {
		t.Errorf("nil Error() = %q", got)
	}
}

func TestRepositoryError_RetryableFlag(t *testing.T) {
	tests := []struct {
		code ErrorCode
		err  error
		want bool
	}{
		{ErrCodeBusy, nil, true},
		{ErrCodeConnection, nil, true},
		{ErrCodeTransaction, nil, true},
		{ErrCodeReferentialIntegrity, nil, false},
		{ErrCodeSchemaVersion, nil, false},
		{ErrCodeUnknown, errors.New("database table is locked"), true},
		{ErrCodeUnknown, errors.New("syntax error"), false},
	}

	for _, tt := range tests {
		err := NewRepositoryError("op", tt.err, tt.code)
		if err.IsRetryable() != tt.want {
			t.Errorf("code %s err %v: retryable = %v, want %v", tt.code, tt.err, err.IsRetryable(), tt.want)
		}
	}
}

func TestRepositoryError_IsAndUnwrap(t *testing.T) {
	base := errors.New("underlying")
	err := error(NewRepositoryError("LoadHistory", base, ErrCodeReferentialIntegrity))

	if !errors.Is(err, base) {
		t.Error("expected errors.Is to match the wrapped error")
	}
	if !errors.Is(err, &RepositoryError{Code: ErrCodeReferentialIntegrity}) {
		t.Error("expected errors.Is to match by code")
	}
	if errors.Is(err, &RepositoryError{Code: ErrCodeNotFound}) {
		t.Error("did not expect a match for a different code")
	}
	if !IsReferentialIntegrity(err) || IsNotFound(err) {
		t.Error("classification helpers disagree with the code")
	}
}

func TestNewRepositoryErrorWithContext_CopiesContext(t *testing.T) {
	ctx := map[string]string{"k": "v"}
	err := NewRepositoryErrorWithContext("op", nil, ErrCodeValidation, ctx)
	ctx["k"] = "changed"

	if err.GetContext()["k"] != "v" {
		t.Error("context must be copied")
	}
	if err.GetTimestamp().IsZero() {
		t.Error("timestamp must be set")
	}
	if !strings.Contains(err.WithContext("extra", "1").Error(), "extra=1") {
		t.Error("WithContext must add the detail")
	}
}
