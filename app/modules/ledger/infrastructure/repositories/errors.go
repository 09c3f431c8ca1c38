package ledgerdb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoRowsAffected is returned when a conditional update matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")

	// ErrDuplicateCompletion is returned when a completion insert violates
	// the (participant, challenge) or first-per-cohort uniqueness.
	ErrDuplicateCompletion = errors.New("duplicate completion")

	// ErrDuplicateCohort is returned when a cohort name is already taken.
	ErrDuplicateCohort = errors.New("duplicate cohort")
)

// SQLSTATE codes.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// sqlState extracts the SQLSTATE from either driver's error type.
func sqlState(err error) string {
	var pdErr pgdriver.Error
	if errors.As(err, &pdErr) {
		return pdErr.Field('C')
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsTransient reports lock and serialization conflicts that are worth one retry.
func IsTransient(err error) bool {
	switch sqlState(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}
