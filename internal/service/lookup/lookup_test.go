package lookup

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_ResolvePassenger(t *testing.T) {
	store := mocks.NewStore()
	l := New(store.Repos())
	ctx := context.Background()

	jane := &domain.Passenger{ID: 7, PassportNo: "AB123456", FullName: "Jane Doe"}
	store.Passengers.On("GetByPassport", ctx, "AB123456").Return(jane, nil)
	store.Passengers.On("GetByPassport", ctx, "ZZ000000").Return(nil, fmt.Errorf("get passenger: %w", domain.ErrNotFound))

	got, err := l.ResolvePassenger(ctx, "AB123456")
	require.NoError(t, err)
	assert.Equal(t, jane, got)

	_, err = l.ResolvePassenger(ctx, "ZZ000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "ZZ000000")

	store.AssertAll(t)
}

func TestLookup_PassengerByID(t *testing.T) {
	store := mocks.NewStore()
	l := New(store.Repos())
	ctx := context.Background()

	store.Passengers.On("GetByID", ctx, int64(9)).Return(nil, domain.ErrNotFound)

	_, err := l.PassengerByID(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLookup_FindRoute(t *testing.T) {
	store := mocks.NewStore()
	l := New(store.Repos())
	ctx := context.Background()

	flights := []domain.Flight{{FlightNumber: "AA100", Origin: "LAX", Destination: "JFK", Seats: 1}}
	store.Flights.On("FindRoute", ctx, "LAX", "JFK").Return(flights, nil)
	store.Flights.On("FindRoute", ctx, "LAX", "SFO").Return([]domain.Flight{}, nil)
	store.Flights.On("FindRoute", ctx, "SFO", "JFK").Return(nil, &domain.StorageError{Op: "find route", Err: errors.New("connection reset")})

	got, err := l.FindRoute(ctx, "LAX", "JFK")
	require.NoError(t, err)
	assert.Equal(t, flights, got)

	_, err = l.FindRoute(ctx, "LAX", "SFO")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = l.FindRoute(ctx, "SFO", "JFK")
	var se *domain.StorageError
	assert.ErrorAs(t, err, &se)

	store.AssertAll(t)
}

func TestLookup_ExistFlight(t *testing.T) {
	store := mocks.NewStore()
	l := New(store.Repos())
	ctx := context.Background()

	store.Flights.On("GetByNumber", ctx, "AA100").Return(&domain.Flight{FlightNumber: "AA100"}, nil)
	store.Flights.On("GetByNumber", ctx, "XX1").Return(nil, domain.ErrNotFound)
	store.Flights.On("GetByNumber", ctx, "BROKEN").Return(nil, &domain.StorageError{Op: "get flight", Err: errors.New("timeout")})

	ok, err := l.ExistFlight(ctx, "AA100")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.ExistFlight(ctx, "XX1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.ExistFlight(ctx, "BROKEN")
	assert.Error(t, err)
}

func TestLookup_PassengerHasBookingAndAirline(t *testing.T) {
	store := mocks.NewStore()
	l := New(store.Repos())
	ctx := context.Background()

	store.Bookings.On("HasBookedFlight", ctx, "AA100", int64(1)).Return(true, nil)
	store.Flights.On("AirlineExists", ctx, int64(3)).Return(false, nil)

	booked, err := l.PassengerHasBooking(ctx, "AA100", 1)
	require.NoError(t, err)
	assert.True(t, booked)

	exists, err := l.AirlineExists(ctx, 3)
	require.NoError(t, err)
	assert.False(t, exists)

	store.AssertAll(t)
}
