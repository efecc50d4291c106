package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("record not found")

	// Unique-index backstops. The booking validator checks the same rules
	// first; these fire only when two requests race past the checks.
	ErrDateTaken = errors.New("an active appointment already exists at this instant")
	ErrWeekTaken = errors.New("user already has an active appointment this week")

	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
	ErrMobileTaken   = errors.New("mobile already registered")
)

const pgUniqueViolation = "23505"

var constraintErrors = map[string]error{
	"appointments_active_date_uniq": ErrDateTaken,
	"appointments_active_week_uniq": ErrWeekTaken,
	"users_username_key":            ErrUsernameTaken,
	"users_email_key":               ErrEmailTaken,
	"users_mobile_key":              ErrMobileTaken,
}

// mapError translates driver errors into store sentinels. Unrecognised
// errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
	}
	return err
}

// IsConflict reports whether err is one of the unique-constraint sentinels.
func IsConflict(err error) bool {
	for _, e := range constraintErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
