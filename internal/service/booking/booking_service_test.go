package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/kafka"
	"github.com/Domenick1991/airreservations/internal/logging"
	"github.com/Domenick1991/airreservations/internal/metrics"
	"github.com/Domenick1991/airreservations/internal/repository/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) AcquireDepartureLock(ctx context.Context, flightNumber string, departure domain.Date, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, flightNumber, departure, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLocker) ReleaseDepartureLock(ctx context.Context, flightNumber string, departure domain.Date, token string) error {
	args := m.Called(ctx, flightNumber, departure, token)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var (
	jane      = &domain.Passenger{ID: 7, PassportNo: "AB123456", FullName: "Jane Doe"}
	aa100     = domain.Flight{AirlineID: 1, FlightNumber: "AA100", Origin: "LAX", Destination: "JFK", Seats: 10, Duration: 5}
	nov15     = domain.Date{Month: 11, Day: 15, Year: 2026}
	validBook = BookFlightInput{Passport: "AB123456", Origin: "LAX", Destination: "JFK", Date: "11/15/2026"}
)

// expectRoute sets up the lookups that precede the transaction.
func expectRoute(store *mocks.Store) {
	store.Passengers.On("GetByPassport", mock.Anything, "AB123456").Return(jane, nil)
	store.Flights.On("FindRoute", mock.Anything, "LAX", "JFK").Return([]domain.Flight{aa100}, nil)
}

// expectSeatChecks sets up the reads of one transaction attempt.
func expectSeatChecks(store *mocks.Store, booked int) {
	store.On("WithinTx", mock.Anything).Return(nil)
	store.Bookings.On("LockDeparture", mock.Anything, "AA100", nov15).Return(nil)
	store.Flights.On("GetByNumber", mock.Anything, "AA100").Return(&aa100, nil)
	store.Bookings.On("CountForDeparture", mock.Anything, "AA100", nov15).Return(booked, nil)
}

func bookingWithRef(ref string) *domain.Booking {
	return &domain.Booking{Reference: ref, Departure: nov15, FlightNumber: "AA100", PassengerID: 7, CreatedAt: time.Now()}
}

func TestBookingService_BookFlight_Success(t *testing.T) {
	store := mocks.NewStore()
	gen := &MockGenerator{}
	producer := &MockProducer{}
	service := NewBookingService(store, gen, WithEvents(kafka.NewEmitter(producer, "booking.events", logging.Nop(), nil)))

	expectRoute(store)
	expectSeatChecks(store, 3)
	store.Bookings.On("Exists", mock.Anything, "AA100", int64(7), nov15).Return(false, nil)
	gen.On("Generate").Return("ABCDEFGH12", nil).Once()
	store.Bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Reference == "ABCDEFGH12" && b.FlightNumber == "AA100" && b.PassengerID == 7 && b.Departure == nov15
	})).Return(nil).Once()
	store.Bookings.On("GetByReference", mock.Anything, "ABCDEFGH12").Return(bookingWithRef("ABCDEFGH12"), nil).Once()
	producer.On("Publish", mock.Anything, "booking.events", "ABCDEFGH12", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated && e.PassengerID == 7 && e.Departure == "11/15/2026"
	})).Return(nil).Once()

	booking, err := service.BookFlight(context.Background(), validBook)

	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGH12", booking.Reference)
	assert.Equal(t, nov15, booking.Departure)
	store.AssertAll(t)
	store.AssertNumberOfCalls(t, "WithinTx", 1)
	gen.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestBookingService_BookFlight_NormalizesDate(t *testing.T) {
	store := mocks.NewStore()
	gen := &MockGenerator{}
	service := NewBookingService(store, gen)
	mar7 := domain.Date{Month: 3, Day: 7, Year: 2027}

	expectRoute(store)
	store.On("WithinTx", mock.Anything).Return(nil)
	store.Bookings.On("LockDeparture", mock.Anything, "AA100", mar7).Return(nil)
	store.Flights.On("GetByNumber", mock.Anything, "AA100").Return(&aa100, nil)
	store.Bookings.On("CountForDeparture", mock.Anything, "AA100", mar7).Return(0, nil)
	store.Bookings.On("Exists", mock.Anything, "AA100", int64(7), mar7).Return(false, nil)
	gen.On("Generate").Return("ABCDEFGH12", nil)
	store.Bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool { return b.Departure == mar7 })).Return(nil)
	store.Bookings.On("GetByReference", mock.Anything, "ABCDEFGH12").
		Return(&domain.Booking{Reference: "ABCDEFGH12", Departure: mar7, FlightNumber: "AA100", PassengerID: 7}, nil)

	input := validBook
	input.Date = "03/07/2027"
	booking, err := service.BookFlight(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "3/7/2027", booking.Departure.String())
	store.AssertAll(t)
}

func TestBookingService_BookFlight_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input BookFlightInput
		field string
	}{
		{"lower case passport", BookFlightInput{Passport: "ab123456", Origin: "LAX", Destination: "JFK", Date: "1/1/2026"}, "passport_number"},
		{"short passport", BookFlightInput{Passport: "AB1234", Origin: "LAX", Destination: "JFK", Date: "1/1/2026"}, "passport_number"},
		{"missing origin", BookFlightInput{Passport: "AB123456", Destination: "JFK", Date: "1/1/2026"}, "origin"},
		{"digits in destination", BookFlightInput{Passport: "AB123456", Origin: "LAX", Destination: "JFK1", Date: "1/1/2026"}, "destination"},
		{"month 13", BookFlightInput{Passport: "AB123456", Origin: "LAX", Destination: "JFK", Date: "13/1/2026"}, "date"},
		{"two parts", BookFlightInput{Passport: "AB123456", Origin: "LAX", Destination: "JFK", Date: "1/2026"}, "date"},
		{"bad flight number", BookFlightInput{Passport: "AB123456", Origin: "LAX", Destination: "JFK", Date: "1/1/2026", FlightNumber: "aa100"}, "flight_number"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := mocks.NewStore()
			service := NewBookingService(store, &MockGenerator{})

			_, err := service.BookFlight(context.Background(), tc.input)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			store.AssertNotCalled(t, "WithinTx", mock.Anything)
		})
	}
}

func TestBookingService_BookFlight_PassengerNotFound(t *testing.T) {
	store := mocks.NewStore()
	service := NewBookingService(store, &MockGenerator{})

	store.Passengers.On("GetByPassport", mock.Anything, "AB123456").Return(nil, fmt.Errorf("get passenger: %w", domain.ErrNotFound))

	_, err := service.BookFlight(context.Background(), validBook)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.Flights.AssertNotCalled(t, "FindRoute", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestBookingService_BookFlight_RouteEmpty(t *testing.T) {
	store := mocks.NewStore()
	service := NewBookingService(store, &MockGenerator{})

	store.Passengers.On("GetByPassport", mock.Anything, "AB123456").Return(jane, nil)
	store.Flights.On("FindRoute", mock.Anything, "LAX", "JFK").Return([]domain.Flight{}, nil)

	_, err := service.BookFlight(context.Background(), validBook)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestBookingService_BookFlight_ChosenFlightNotOnRoute(t *testing.T) {
	store := mocks.NewStore()
	service := NewBookingService(store, &MockGenerator{})
	expectRoute(store)

	input := validBook
	input.FlightNumber = "UA999"
	_, err := service.BookFlight(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestBookingService_BookFlight_Duplicate(t *testing.T) {
	store := mocks.NewStore()
	gen := &MockGenerator{}
	service := NewBookingService(store, gen)

	expectRoute(store)
	expectSeatChecks(store, 1)
	store.Bookings.On("Exists", mock.Anything, "AA100", int64(7), nov15).Return(true, nil)

	_, err := service.BookFlight(context.Background(), validBook)

	assert.ErrorIs(t, err, domain.ErrDuplicate)
	gen.AssertNotCalled(t, "Generate")
	store.Bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookingService_BookFlight_CapacityExceeded(t *testing.T) {
	store := mocks.NewStore()
	gen := &MockGenerator{}
	service := NewBookingService(store, gen)

	expectRoute(store)
	expectSeatChecks(store, 10)

	_, err := service.BookFlight(context.Background(), validBook)

	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	gen.AssertNotCalled(t, "Generate")
	store.Bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookingService_BookFlight_RetriesReferenceConflict(t *testing.T) {
	store := mocks.NewStore()
	gen := &MockGenerator{}
	service := NewBookingService(store, gen)

	expectRoute(store)
	expectSeatChecks(store, 0)
	store.Bookings.On("Exists", mock.Anything, "AA100", int64(7), nov15).Return(false, nil)
	gen.On("Generate").Return("TAKEN00001", nil).Once()
	gen.On("Generate").Return("FRESH00002", nil).Once()
	store.Bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool { return b.Reference == "TAKEN00001" })).
		Return(fmt.Errorf("insert booking: booking_pkey: %w", domain.ErrConflict)).Once()
	store.Bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool { return b.Reference == "FRESH00002" })).
		Return(nil).Once()
	store.Bookings.On("GetByReference", mock.Anything, "FRESH00002").Return(bookingWithRef("FRESH00002"), nil)

	booking, err := service.BookFlight(context.Background(), validBook)

	require.NoError(t, err)
	assert.Equal(t, "FRESH00002", booking.Reference)
	store.AssertNumberOfCalls(t, "WithinTx", 2)
	gen.AssertExpectations(t)
}

func TestBookingService_BookFlight_ContentionAfterMaxAttempts(t *testing.T) {
	store := mocks.NewStore()
	gen := &MockGenerator{}
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	service := NewBookingService(store, gen, WithMetrics(reg))

	expectRoute(store)
	expectSeatChecks(store, 0)
	store.Bookings.On("Exists", mock.Anything, "AA100", int64(7), nov15).Return(false, nil)
	gen.On("Generate").Return("TAKEN00001", nil)
	store.Bookings.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	_, err := service.BookFlight(context.Background(), validBook)

	assert.ErrorIs(t, err, domain.ErrContention)
	store.AssertNumberOfCalls(t, "WithinTx", DefaultMaxAttempts)
	gen.AssertNumberOfCalls(t, "Generate", DefaultMaxAttempts)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.BookingsTotal.WithLabelValues("contention")))
}

func TestBookingService_BookFlight_VerifyFailure(t *testing.T) {
	store := mocks.NewStore()
	gen := &MockGenerator{}
	producer := &MockProducer{}
	service := NewBookingService(store, gen, WithEvents(kafka.NewEmitter(producer, "booking.events", logging.Nop(), nil)))

	expectRoute(store)
	expectSeatChecks(store, 0)
	store.Bookings.On("Exists", mock.Anything, "AA100", int64(7), nov15).Return(false, nil)
	gen.On("Generate").Return("ABCDEFGH12", nil)
	store.Bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	store.Bookings.On("GetByReference", mock.Anything, "ABCDEFGH12").Return(nil, domain.ErrNotFound)

	_, err := service.BookFlight(context.Background(), validBook)

	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "verify booking", se.Op)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_BookFlight_StorageErrorNotRetried(t *testing.T) {
	store := mocks.NewStore()
	service := NewBookingService(store, &MockGenerator{})

	expectRoute(store)
	store.On("WithinTx", mock.Anything).Return(nil)
	store.Bookings.On("LockDeparture", mock.Anything, "AA100", nov15).Return(&domain.StorageError{Op: "lock departure", Err: errors.New("connection reset")})

	_, err := service.BookFlight(context.Background(), validBook)

	var se *domain.StorageError
	assert.ErrorAs(t, err, &se)
	store.AssertNumberOfCalls(t, "WithinTx", 1)
}

func TestBookingService_BookFlight_CancelledContext(t *testing.T) {
	store := mocks.NewStore()
	service := NewBookingService(store, &MockGenerator{}, WithRequestTimeout(time.Second))
	expectRoute(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := service.BookFlight(ctx, validBook)

	assert.ErrorIs(t, err, context.Canceled)
	store.AssertNotCalled(t, "WithinTx", mock.Anything)
	store.Bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookingService_BookFlight_DepartureLock(t *testing.T) {
	store := mocks.NewStore()
	gen := &MockGenerator{}
	locker := &MockLocker{}
	service := NewBookingService(store, gen, WithLocker(locker, 5*time.Second))

	expectRoute(store)
	expectSeatChecks(store, 0)
	store.Bookings.On("Exists", mock.Anything, "AA100", int64(7), nov15).Return(false, nil)
	gen.On("Generate").Return("ABCDEFGH12", nil)
	store.Bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	store.Bookings.On("GetByReference", mock.Anything, "ABCDEFGH12").Return(bookingWithRef("ABCDEFGH12"), nil)

	locker.On("AcquireDepartureLock", mock.Anything, "AA100", nov15, 5*time.Second).Return("", false, nil).Once()
	locker.On("AcquireDepartureLock", mock.Anything, "AA100", nov15, 5*time.Second).Return("token-1", true, nil).Once()
	locker.On("ReleaseDepartureLock", mock.Anything, "AA100", nov15, "token-1").Return(nil).Once()

	_, err := service.BookFlight(context.Background(), validBook)

	require.NoError(t, err)
	locker.AssertExpectations(t)
}

func TestBookingService_BookFlight_DepartureLockBusy(t *testing.T) {
	store := mocks.NewStore()
	locker := &MockLocker{}
	service := NewBookingService(store, &MockGenerator{}, WithLocker(locker, time.Second), WithMaxAttempts(2))

	expectRoute(store)
	locker.On("AcquireDepartureLock", mock.Anything, "AA100", nov15, time.Second).Return("", false, nil)

	_, err := service.BookFlight(context.Background(), validBook)

	assert.ErrorIs(t, err, domain.ErrContention)
	locker.AssertNumberOfCalls(t, "AcquireDepartureLock", 2)
	store.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestBookingService_BookFlight_LockerDownFallsBackToDatabase(t *testing.T) {
	store := mocks.NewStore()
	gen := &MockGenerator{}
	locker := &MockLocker{}
	service := NewBookingService(store, gen, WithLocker(locker, time.Second))

	expectRoute(store)
	expectSeatChecks(store, 0)
	store.Bookings.On("Exists", mock.Anything, "AA100", int64(7), nov15).Return(false, nil)
	gen.On("Generate").Return("ABCDEFGH12", nil)
	store.Bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	store.Bookings.On("GetByReference", mock.Anything, "ABCDEFGH12").Return(bookingWithRef("ABCDEFGH12"), nil)
	locker.On("AcquireDepartureLock", mock.Anything, "AA100", nov15, time.Second).Return("", false, errors.New("dial tcp: connection refused"))

	_, err := service.BookFlight(context.Background(), validBook)

	require.NoError(t, err)
	locker.AssertNotCalled(t, "ReleaseDepartureLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_GetBooking(t *testing.T) {
	store := mocks.NewStore()
	service := NewBookingService(store, &MockGenerator{})

	store.Bookings.On("GetByReference", mock.Anything, "ABCDEFGH12").Return(bookingWithRef("ABCDEFGH12"), nil)
	store.Bookings.On("GetByReference", mock.Anything, "ZZZZZZZZZZ").Return(nil, domain.ErrNotFound)

	booking, err := service.GetBooking(context.Background(), "ABCDEFGH12")
	require.NoError(t, err)
	assert.Equal(t, "AA100", booking.FlightNumber)

	_, err = service.GetBooking(context.Background(), "ZZZZZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.GetBooking(context.Background(), "short")
	assert.True(t, domain.IsValidation(err))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "booked", Outcome(nil))
	assert.Equal(t, "invalid", Outcome(domain.NewValidationError("date", "bad")))
	assert.Equal(t, "not_found", Outcome(fmt.Errorf("x: %w", domain.ErrNotFound)))
	assert.Equal(t, "duplicate", Outcome(domain.ErrDuplicate))
	assert.Equal(t, "capacity_exceeded", Outcome(domain.ErrCapacityExceeded))
	assert.Equal(t, "contention", Outcome(domain.ErrContention))
	assert.Equal(t, "timeout", Outcome(fmt.Errorf("begin transaction: %w", context.DeadlineExceeded)))
	assert.Equal(t, "storage_error", Outcome(&domain.StorageError{Op: "commit", Err: errors.New("eof")}))
}
