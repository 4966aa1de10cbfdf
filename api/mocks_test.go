package api

import (
	"context"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/service/booking"
	"github.com/Domenick1991/airreservations/internal/service/flights"
	"github.com/Domenick1991/airreservations/internal/service/passengers"
	"github.com/Domenick1991/airreservations/internal/service/ratings"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) BookFlight(ctx context.Context, input booking.BookFlightInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockPassengerUseCase struct {
	mock.Mock
}

func (m *MockPassengerUseCase) AddPassenger(ctx context.Context, input passengers.AddPassengerInput) (*domain.Passenger, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

type MockRatingUseCase struct {
	mock.Mock
}

func (m *MockRatingUseCase) SubmitRating(ctx context.Context, input ratings.SubmitRatingInput) (*domain.Rating, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) InsertRoute(ctx context.Context, input flights.InsertRouteInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ExistFlight(ctx context.Context, flightNumber string) (bool, error) {
	args := m.Called(ctx, flightNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightUseCase) ListAvailable(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) FlightsByDuration(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) AvailableSeats(ctx context.Context, flightNumber, date string) (*domain.SeatAvailability, error) {
	args := m.Called(ctx, flightNumber, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatAvailability), args.Error(1)
}

func (m *MockFlightUseCase) PopularDestinations(ctx context.Context, k int) ([]domain.DestinationCount, error) {
	args := m.Called(ctx, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DestinationCount), args.Error(1)
}

func (m *MockFlightUseCase) TopRatedRoutes(ctx context.Context, k int) ([]domain.RatedRoute, error) {
	args := m.Called(ctx, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RatedRoute), args.Error(1)
}
