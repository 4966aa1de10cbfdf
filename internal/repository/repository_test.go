package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}
	repos := NewPGStore(pool).Repos()
	assert.NotNil(t, repos.Passengers)
	assert.NotNil(t, repos.Flights)
	assert.NotNil(t, repos.Bookings)
	assert.NotNil(t, repos.Ratings)
	assert.NotNil(t, repos.Keys)
}

func TestMapPGError(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		target error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, domain.ErrConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrConflict},
		{"booking reference taken", &pgconn.PgError{Code: "23505", ConstraintName: constraintBookingPK}, domain.ErrConflict},
		{"passenger id taken", &pgconn.PgError{Code: "23505", ConstraintName: constraintPassengerPK}, domain.ErrConflict},
		{"passport taken", &pgconn.PgError{Code: "23505", ConstraintName: constraintPassengerPassport}, domain.ErrDuplicate},
		{"booking triple taken", &pgconn.PgError{Code: "23505", ConstraintName: constraintBookingTriple}, domain.ErrDuplicate},
		{"flight number taken", &pgconn.PgError{Code: "23505", ConstraintName: constraintFlightPK}, domain.ErrDuplicate},
		{"missing parent row", &pgconn.PgError{Code: "23503", ConstraintName: "booking_flight_num_fkey"}, domain.ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapPGError("op", tc.err), tc.target)
		})
	}

	var se *domain.StorageError
	assert.ErrorAs(t, mapPGError("insert booking", errors.New("connection reset")), &se)
	assert.Equal(t, "insert booking", se.Op)
	assert.NoError(t, mapPGError("op", nil))
}

func TestCheckKeyColumn(t *testing.T) {
	assert.NoError(t, CheckKeyColumn(TablePassenger, ColumnID))
	assert.NoError(t, CheckKeyColumn(TableRatings, ColumnID))
	assert.Error(t, CheckKeyColumn("passenger; DROP TABLE booking", ColumnID))
	assert.Error(t, CheckKeyColumn(TablePassenger, "passport_num"))
}

type scriptedStore struct {
	results []error
	calls   int
}

func (s *scriptedStore) Repos() Repositories { return Repositories{} }

func (s *scriptedStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	err := s.results[s.calls]
	s.calls++
	return err
}

func (s *scriptedStore) Ping(ctx context.Context) error { return nil }
func (s *scriptedStore) Close() error                   { return nil }

func TestWithRetry(t *testing.T) {
	noop := func(ctx context.Context, repos Repositories) error { return nil }

	t.Run("retries conflicts", func(t *testing.T) {
		store := &scriptedStore{results: []error{domain.ErrConflict, domain.ErrConflict, nil}}
		attempts, err := WithRetry(context.Background(), store, 5, noop)
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		store := &scriptedStore{results: []error{domain.ErrConflict, domain.ErrConflict}}
		attempts, err := WithRetry(context.Background(), store, 2, noop)
		assert.ErrorIs(t, err, domain.ErrContention)
		assert.Equal(t, 2, attempts)
		assert.Equal(t, 2, store.calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		store := &scriptedStore{results: []error{domain.ErrDuplicate, nil}}
		_, err := WithRetry(context.Background(), store, 5, noop)
		assert.ErrorIs(t, err, domain.ErrDuplicate)
		assert.Equal(t, 1, store.calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		store := &scriptedStore{results: []error{nil}}
		_, err := WithRetry(ctx, store, 5, noop)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, store.calls)
	})
}
