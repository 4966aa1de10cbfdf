package flights

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/kafka"
	"github.com/Domenick1991/airreservations/internal/logging"
	"github.com/Domenick1991/airreservations/internal/metrics"
	"github.com/Domenick1991/airreservations/internal/repository"
	"github.com/Domenick1991/airreservations/internal/service/lookup"
	"github.com/Domenick1991/airreservations/internal/validation"
	"go.uber.org/zap"
)

const cacheName = "flights"

type FlightUseCase interface {
	InsertRoute(ctx context.Context, input InsertRouteInput) (*domain.Flight, error)
	ExistFlight(ctx context.Context, flightNumber string) (bool, error)
	ListAvailable(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	FlightsByDuration(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	AvailableSeats(ctx context.Context, flightNumber, date string) (*domain.SeatAvailability, error)
	PopularDestinations(ctx context.Context, k int) ([]domain.DestinationCount, error)
	TopRatedRoutes(ctx context.Context, k int) ([]domain.RatedRoute, error)
}

// Reports is the read-only reporting collaborator.
type Reports interface {
	ListAvailableFlights(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	FlightsByDuration(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	MostPopularDestinations(ctx context.Context, k int) ([]domain.DestinationCount, error)
	HighestRatedRoutes(ctx context.Context, k int) ([]domain.RatedRoute, error)
	AvailableSeats(ctx context.Context, flightNumber string, departure domain.Date) (*domain.SeatAvailability, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context, origin, destination string) ([]domain.Flight, bool, error)
	SetFlights(ctx context.Context, origin, destination string, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context, origin, destination string) error
}

// InsertRouteInput carries the raw route fields as entered by an operator.
type InsertRouteInput struct {
	AirlineID    string
	FlightNumber string
	Origin       string
	Destination  string
	Plane        string
	Seats        string
	Duration     string
}

type FlightService struct {
	store          repository.Store
	lookup         *lookup.Lookup
	reports        Reports
	cache          FlightCache
	events         *kafka.Emitter
	maxAttempts    int
	strictCalendar bool
	metrics        *metrics.Registry
	logger         *zap.SugaredLogger
}

type FlightServiceOption func(*FlightService)

func WithCache(cache FlightCache) FlightServiceOption {
	return func(s *FlightService) { s.cache = cache }
}

func WithEvents(events *kafka.Emitter) FlightServiceOption {
	return func(s *FlightService) { s.events = events }
}

func WithMaxAttempts(n int) FlightServiceOption {
	return func(s *FlightService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithStrictCalendar(strict bool) FlightServiceOption {
	return func(s *FlightService) { s.strictCalendar = strict }
}

func WithMetrics(reg *metrics.Registry) FlightServiceOption {
	return func(s *FlightService) { s.metrics = reg }
}

func WithLogger(logger *zap.SugaredLogger) FlightServiceOption {
	return func(s *FlightService) { s.logger = logger }
}

func NewFlightService(store repository.Store, reports Reports, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		store:       store,
		lookup:      lookup.New(store.Repos()),
		reports:     reports,
		maxAttempts: 5,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateRoute(input InsertRouteInput) (*domain.Flight, error) {
	var (
		f   domain.Flight
		err error
	)
	if f.AirlineID, err = validation.ID("airline_id", input.AirlineID); err != nil {
		return nil, err
	}
	if f.FlightNumber, err = validation.FlightNumber(input.FlightNumber); err != nil {
		return nil, err
	}
	if f.Origin, err = validation.Place("origin", input.Origin); err != nil {
		return nil, err
	}
	if f.Destination, err = validation.Place("destination", input.Destination); err != nil {
		return nil, err
	}
	if f.Plane, err = validation.Plane(input.Plane); err != nil {
		return nil, err
	}
	if f.Seats, err = validation.Seats(input.Seats); err != nil {
		return nil, err
	}
	if f.Duration, err = validation.Duration(input.Duration); err != nil {
		return nil, err
	}
	return &f, nil
}

// InsertRoute adds a flight for an existing airline. Flight numbers are unique.
func (s *FlightService) InsertRoute(ctx context.Context, input InsertRouteInput) (*domain.Flight, error) {
	flight, err := validateRoute(input)
	if err != nil {
		s.metrics.ObserveOperation("insert_route", "invalid")
		return nil, err
	}

	_, err = repository.WithRetry(ctx, s.store, s.maxAttempts, func(ctx context.Context, repos repository.Repositories) error {
		ok, err := repos.Flights.AirlineExists(ctx, flight.AirlineID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("airline %d: %w", flight.AirlineID, domain.ErrNotFound)
		}
		exists, err := lookup.New(repos).ExistFlight(ctx, flight.FlightNumber)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("flight %s: %w", flight.FlightNumber, domain.ErrDuplicate)
		}
		return repos.Flights.Create(ctx, flight)
	})
	if err != nil {
		s.metrics.ObserveOperation("insert_route", outcome(err))
		s.logger.Infow("route rejected", "flight_number", flight.FlightNumber, "error", err)
		return nil, err
	}

	s.metrics.ObserveOperation("insert_route", "ok")
	s.logger.Infow("route inserted", "flight_number", flight.FlightNumber, "origin", flight.Origin, "destination", flight.Destination)

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx, flight.Origin, flight.Destination); err != nil {
			s.logger.Warnw("failed to invalidate flight listing", "origin", flight.Origin, "destination", flight.Destination, "error", err)
		}
	}

	event := kafka.NewEvent(kafka.EventRouteInserted)
	event.FlightNumber = flight.FlightNumber
	event.Origin = flight.Origin
	event.Destination = flight.Destination
	s.events.Emit(ctx, event)

	return flight, nil
}

func (s *FlightService) ExistFlight(ctx context.Context, flightNumber string) (bool, error) {
	if _, err := validation.FlightNumber(flightNumber); err != nil {
		return false, err
	}
	return s.lookup.ExistFlight(ctx, flightNumber)
}

// ListAvailable lists the flights of a route, served from the cache when one
// is configured.
func (s *FlightService) ListAvailable(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	if err := validateRoutePlaces(origin, destination); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.GetFlights(ctx, origin, destination)
		if err != nil {
			s.logger.Warnw("flight cache read failed", "error", err)
		}
		if ok {
			s.metrics.CacheHit(cacheName)
			return cached, nil
		}
		s.metrics.CacheMiss(cacheName)
	}

	flights, err := s.reports.ListAvailableFlights(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, origin, destination, flights); err != nil {
			s.logger.Warnw("flight cache write failed", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) FlightsByDuration(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	if err := validateRoutePlaces(origin, destination); err != nil {
		return nil, err
	}
	return s.reports.FlightsByDuration(ctx, origin, destination)
}

func (s *FlightService) AvailableSeats(ctx context.Context, flightNumber, date string) (*domain.SeatAvailability, error) {
	if _, err := validation.FlightNumber(flightNumber); err != nil {
		return nil, err
	}
	departure, err := validation.DepartureDate(date, s.strictCalendar)
	if err != nil {
		return nil, err
	}
	return s.reports.AvailableSeats(ctx, flightNumber, departure)
}

func (s *FlightService) PopularDestinations(ctx context.Context, k int) ([]domain.DestinationCount, error) {
	if err := validation.PositiveCount("k", k); err != nil {
		return nil, err
	}
	return s.reports.MostPopularDestinations(ctx, k)
}

func (s *FlightService) TopRatedRoutes(ctx context.Context, k int) ([]domain.RatedRoute, error) {
	if err := validation.PositiveCount("k", k); err != nil {
		return nil, err
	}
	return s.reports.HighestRatedRoutes(ctx, k)
}

func validateRoutePlaces(origin, destination string) error {
	if _, err := validation.Place("origin", origin); err != nil {
		return err
	}
	_, err := validation.Place("destination", destination)
	return err
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, domain.ErrContention):
		return "contention"
	default:
		return "storage_error"
	}
}

var _ FlightUseCase = (*FlightService)(nil)
