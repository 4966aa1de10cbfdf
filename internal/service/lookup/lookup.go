// Package lookup resolves passports, routes and booking facts without
// writing anything. All reads run outside transactions.
package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/repository"
)

type Lookup struct {
	passengers repository.PassengerRepository
	flights    repository.FlightRepository
	bookings   repository.BookingRepository
}

func New(repos repository.Repositories) *Lookup {
	return &Lookup{
		passengers: repos.Passengers,
		flights:    repos.Flights,
		bookings:   repos.Bookings,
	}
}

func (l *Lookup) ResolvePassenger(ctx context.Context, passport string) (*domain.Passenger, error) {
	p, err := l.passengers.GetByPassport(ctx, passport)
	if err != nil {
		return nil, fmt.Errorf("passenger with passport %s: %w", passport, err)
	}
	return p, nil
}

func (l *Lookup) PassengerByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	p, err := l.passengers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("passenger %d: %w", id, err)
	}
	return p, nil
}

// FindRoute returns the flights from origin to destination with a declared
// capacity above zero. An empty route is ErrNotFound. Remaining seats are not
// checked here.
func (l *Lookup) FindRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	flights, err := l.flights.FindRoute(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return nil, fmt.Errorf("route %s to %s: %w", origin, destination, domain.ErrNotFound)
	}
	return flights, nil
}

func (l *Lookup) ExistFlight(ctx context.Context, flightNumber string) (bool, error) {
	_, err := l.flights.GetByNumber(ctx, flightNumber)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (l *Lookup) PassengerHasBooking(ctx context.Context, flightNumber string, passengerID int64) (bool, error) {
	return l.bookings.HasBookedFlight(ctx, flightNumber, passengerID)
}

func (l *Lookup) AirlineExists(ctx context.Context, airlineID int64) (bool, error) {
	return l.flights.AirlineExists(ctx, airlineID)
}
