// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/repository"
	"github.com/stretchr/testify/mock"
)

type PassengerRepository struct {
	mock.Mock
}

func (m *PassengerRepository) GetByPassport(ctx context.Context, passport string) (*domain.Passenger, error) {
	args := m.Called(ctx, passport)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *PassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *PassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	args := m.Called(ctx, passenger)
	return args.Error(0)
}

type FlightRepository struct {
	mock.Mock
}

func (m *FlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *FlightRepository) FindRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *FlightRepository) AirlineExists(ctx context.Context, airlineID int64) (bool, error) {
	args := m.Called(ctx, airlineID)
	return args.Bool(0), args.Error(1)
}

func (m *FlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

type BookingRepository struct {
	mock.Mock
}

func (m *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *BookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *BookingRepository) Exists(ctx context.Context, flightNumber string, passengerID int64, departure domain.Date) (bool, error) {
	args := m.Called(ctx, flightNumber, passengerID, departure)
	return args.Bool(0), args.Error(1)
}

func (m *BookingRepository) HasBookedFlight(ctx context.Context, flightNumber string, passengerID int64) (bool, error) {
	args := m.Called(ctx, flightNumber, passengerID)
	return args.Bool(0), args.Error(1)
}

func (m *BookingRepository) CountForDeparture(ctx context.Context, flightNumber string, departure domain.Date) (int, error) {
	args := m.Called(ctx, flightNumber, departure)
	return args.Int(0), args.Error(1)
}

func (m *BookingRepository) LockDeparture(ctx context.Context, flightNumber string, departure domain.Date) error {
	args := m.Called(ctx, flightNumber, departure)
	return args.Error(0)
}

type RatingRepository struct {
	mock.Mock
}

func (m *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

type KeyAllocator struct {
	mock.Mock
}

func (m *KeyAllocator) NextID(ctx context.Context, table, column string) (int64, error) {
	args := m.Called(ctx, table, column)
	return args.Get(0).(int64), args.Error(1)
}

// Store runs transaction bodies directly against the mocked repositories.
// WithinTx is recorded, and an error set with On("WithinTx") is returned
// without running the body.
type Store struct {
	mock.Mock
	Passengers *PassengerRepository
	Flights    *FlightRepository
	Bookings   *BookingRepository
	Ratings    *RatingRepository
	Keys       *KeyAllocator
}

func NewStore() *Store {
	return &Store{
		Passengers: &PassengerRepository{},
		Flights:    &FlightRepository{},
		Bookings:   &BookingRepository{},
		Ratings:    &RatingRepository{},
		Keys:       &KeyAllocator{},
	}
}

func (m *Store) Repos() repository.Repositories {
	return repository.Repositories{
		Passengers: m.Passengers,
		Flights:    m.Flights,
		Bookings:   m.Bookings,
		Ratings:    m.Ratings,
		Keys:       m.Keys,
	}
}

func (m *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m.Repos())
}

func (m *Store) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Store) Close() error {
	return nil
}

// AssertAll checks the expectations of every mocked repository.
func (m *Store) AssertAll(t mock.TestingT) {
	m.Passengers.AssertExpectations(t)
	m.Flights.AssertExpectations(t)
	m.Bookings.AssertExpectations(t)
	m.Ratings.AssertExpectations(t)
	m.Keys.AssertExpectations(t)
}

var (
	_ repository.PassengerRepository = (*PassengerRepository)(nil)
	_ repository.FlightRepository    = (*FlightRepository)(nil)
	_ repository.BookingRepository   = (*BookingRepository)(nil)
	_ repository.RatingRepository    = (*RatingRepository)(nil)
	_ repository.KeyAllocator        = (*KeyAllocator)(nil)
	_ repository.Store               = (*Store)(nil)
)
