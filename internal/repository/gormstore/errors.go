package gormstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Keys generated by the service. Reusing one of them means another writer got
// there first and the whole transaction may be retried.
var generatedKeys = map[string]bool{
	"booking.book_ref": true,
	"passenger.id":     true,
	"ratings.id":       true,
	"booking_pkey":     true,
	"passenger_pkey":   true,
	"ratings_pkey":     true,
}

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case sqlite3.ErrConstraint:
			switch liteErr.ExtendedCode {
			case sqlite3.ErrConstraintForeignKey:
				return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
			case sqlite3.ErrConstraintCheck:
				return checkViolation(op, constraintColumn(liteErr.Error()))
			case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
				return uniqueViolation(op, constraintColumn(liteErr.Error()))
			}
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case "23505":
			return uniqueViolation(op, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case "23514":
			return checkViolation(op, pgErr.ConstraintName)
		}
	}
	return domain.Storage(op, err)
}

// Range checks declared on the models, named the way postgres names the
// CHECK constraints of schema.sql.
var checkedFields = map[string]string{
	"flight_seats_check":    "seats",
	"flight_duration_check": "duration",
	"ratings_score_check":   "score",
}

func checkViolation(op, constraint string) error {
	field, ok := checkedFields[constraint]
	if !ok {
		field = constraint
	}
	return fmt.Errorf("%s: %w", op, domain.NewValidationError(field, "out of range"))
}

func uniqueViolation(op, key string) error {
	if generatedKeys[key] {
		return fmt.Errorf("%s: %s: %w", op, key, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %s: %w", op, key, domain.ErrDuplicate)
}

// constraintColumn extracts "table.column" from
// "UNIQUE constraint failed: table.column[, table.column...]".
func constraintColumn(msg string) string {
	_, cols, found := strings.Cut(msg, "constraint failed: ")
	if !found {
		return msg
	}
	first, _, _ := strings.Cut(cols, ",")
	return strings.TrimSpace(first)
}
