package errors

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// classifySQLiteError classifies errors of both supported SQLite drivers.
// It returns ErrCodeUnknown for anything else.
func classifySQLiteError(err error) ErrorCode {
	var cgoErr sqlite3.Error
	if errors.As(err, &cgoErr) {
		return classifySQLiteCodes(int(cgoErr.ExtendedCode), int(cgoErr.Code), cgoErr.Error())
	}

	var pureErr *moderncsqlite.Error
	if errors.As(err, &pureErr) {
		code := pureErr.Code()
		return classifySQLiteCodes(code, code&0xff, pureErr.Error())
	}

	return ErrCodeUnknown
}

// classifySQLiteCodes maps SQLite result codes, which are identical for both
// drivers, to store error codes.
func classifySQLiteCodes(extended, primary int, msg string) ErrorCode {
	switch extended {
	case sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return ErrCodeDuplicate
	case sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ErrCodeReferentialIntegrity
	case sqlitelib.SQLITE_CONSTRAINT_CHECK, sqlitelib.SQLITE_CONSTRAINT_NOTNULL,
		sqlitelib.SQLITE_CONSTRAINT_TRIGGER, sqlitelib.SQLITE_CONSTRAINT_ROWID:
		return ErrCodeConstraint
	}

	switch primary {
	case sqlitelib.SQLITE_CONSTRAINT:
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "unique"):
			return ErrCodeDuplicate
		case strings.Contains(lower, "foreign key"):
			return ErrCodeReferentialIntegrity
		}
		return ErrCodeConstraint
	case sqlitelib.SQLITE_CORRUPT, sqlitelib.SQLITE_NOTADB:
		return ErrCodeCorruption
	case sqlitelib.SQLITE_PERM, sqlitelib.SQLITE_AUTH, sqlitelib.SQLITE_READONLY:
		return ErrCodePermission
	case sqlitelib.SQLITE_BUSY, sqlitelib.SQLITE_LOCKED:
		return ErrCodeBusy
	case sqlitelib.SQLITE_CANTOPEN, sqlitelib.SQLITE_IOERR:
		return ErrCodeConnection
	case sqlitelib.SQLITE_FULL:
		return ErrCodeDiskSpace
	case sqlitelib.SQLITE_MISUSE:
		return ErrCodeInternal
	case sqlitelib.SQLITE_SCHEMA:
		return ErrCodeSchema
	default:
		return ErrCodeUnknown
	}
}
