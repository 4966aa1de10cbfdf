package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreservations/internal/domain"
)

type PassengerRepository interface {
	GetByPassport(ctx context.Context, passport string) (*domain.Passenger, error)
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	Create(ctx context.Context, passenger *domain.Passenger) error
}

type FlightRepository interface {
	GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error)
	// FindRoute returns flights between origin and destination with a declared
	// capacity above zero, ordered by flight number.
	FindRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	AirlineExists(ctx context.Context, airlineID int64) (bool, error)
	Create(ctx context.Context, flight *domain.Flight) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	Exists(ctx context.Context, flightNumber string, passengerID int64, departure domain.Date) (bool, error)
	HasBookedFlight(ctx context.Context, flightNumber string, passengerID int64) (bool, error)
	CountForDeparture(ctx context.Context, flightNumber string, departure domain.Date) (int, error)
	// LockDeparture serializes writers of one (flight, date) pair until the
	// surrounding transaction ends.
	LockDeparture(ctx context.Context, flightNumber string, departure domain.Date) error
}

type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
}

// KeyAllocator derives the next surrogate id of a table from its current maximum.
type KeyAllocator interface {
	NextID(ctx context.Context, table, column string) (int64, error)
}

type Repositories struct {
	Passengers PassengerRepository
	Flights    FlightRepository
	Bookings   BookingRepository
	Ratings    RatingRepository
	Keys       KeyAllocator
}

// Store is the data access collaborator used by the services.
type Store interface {
	// Repos returns repositories bound to the connection pool, outside any transaction.
	Repos() Repositories
	// WithinTx runs fn in one serializable transaction. The transaction is
	// committed only when fn returns nil.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	TablePassenger = "passenger"
	TableRatings   = "ratings"
	TableAirline   = "airline"
	ColumnID       = "id"
)

var keyColumns = map[string]string{
	TablePassenger: ColumnID,
	TableRatings:   ColumnID,
	TableAirline:   ColumnID,
}

// CheckKeyColumn guards identifiers that end up in SQL text.
func CheckKeyColumn(table, column string) error {
	if col, ok := keyColumns[table]; !ok || col != column {
		return fmt.Errorf("no surrogate key %s.%s", table, column)
	}
	return nil
}

// WithRetry runs fn in a transaction and repeats it while the store reports a
// write conflict, at most maxAttempts times.
func WithRetry(ctx context.Context, store Store, maxAttempts int, fn func(ctx context.Context, repos Repositories) error) (int, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, domain.Storage("begin transaction", err)
		}
		err := store.WithinTx(ctx, fn)
		if err == nil {
			return attempt, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return attempt, err
		}
		lastErr = err
	}
	return maxAttempts, fmt.Errorf("%w: %d attempts: %v", domain.ErrContention, maxAttempts, lastErr)
}
