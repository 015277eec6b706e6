package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrDuplicateReview = errors.New("review already exists for this user and book")
	ErrDuplicateUser   = errors.New("username or email already registered")
)

// pgUniqueViolation is the SQLSTATE postgres reports for a unique index violation.
const pgUniqueViolation = "23505"

// isDuplicateError reports whether err comes from a unique constraint.
// TranslateError covers the registered dialects; the pgconn and message checks
// catch errors that reach us untranslated.
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

// IsNotFound reports whether err means the queried row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
