package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func pgRepositories(db DBTX) Repositories {
	return Repositories{
		Passengers: NewPassengerRepository(db),
		Flights:    NewFlightRepository(db),
		Bookings:   NewBookingRepository(db),
		Ratings:    NewRatingRepository(db),
		Keys:       NewKeyAllocator(db),
	}
}

func (s *PGStore) Repos() Repositories {
	return pgRepositories(s.pool)
}

func (s *PGStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return mapPGError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, pgRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPGError("commit", err)
	}
	return nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the reservation tables when they do not exist yet.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const (
	constraintPassengerPK       = "passenger_pkey"
	constraintRatingsPK         = "ratings_pkey"
	constraintBookingPK         = "booking_pkey"
	constraintPassengerPassport = "passenger_passport_key"
	constraintBookingTriple     = "booking_flight_passenger_departure_key"
	constraintFlightPK          = "flight_pkey"
)

// mapPGError translates driver errors into the domain taxonomy. Serialization
// failures and collisions on generated keys become retryable conflicts.
func mapPGError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case "23505":
			switch pgErr.ConstraintName {
			case constraintPassengerPK, constraintRatingsPK, constraintBookingPK:
				return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrConflict)
			default:
				return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrDuplicate)
			}
		case "23503":
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrNotFound)
		}
	}
	return domain.Storage(op, err)
}

var _ Store = (*PGStore)(nil)
