package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/kafka"
	"github.com/Domenick1991/airreservations/internal/logging"
	"github.com/Domenick1991/airreservations/internal/metrics"
	"github.com/Domenick1991/airreservations/internal/reference"
	"github.com/Domenick1991/airreservations/internal/repository"
	"github.com/Domenick1991/airreservations/internal/service/lookup"
	"github.com/Domenick1991/airreservations/internal/validation"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 5

	lockRetryDelay = 50 * time.Millisecond
)

type BookingUseCase interface {
	BookFlight(ctx context.Context, input BookFlightInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, reference string) (*domain.Booking, error)
}

// Locker serializes bookings of one departure across service instances.
type Locker interface {
	AcquireDepartureLock(ctx context.Context, flightNumber string, departure domain.Date, ttl time.Duration) (string, bool, error)
	ReleaseDepartureLock(ctx context.Context, flightNumber string, departure domain.Date, token string) error
}

type BookFlightInput struct {
	Passport    string `json:"passport_number"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	// FlightNumber picks one of several flights serving the route. When empty
	// the lowest flight number is booked.
	FlightNumber string `json:"flight_number,omitempty"`
}

type BookingService struct {
	store          repository.Store
	lookup         *lookup.Lookup
	generator      reference.Generator
	locker         Locker
	lockTTL        time.Duration
	events         *kafka.Emitter
	maxAttempts    int
	requestTimeout time.Duration
	strictCalendar bool
	metrics        *metrics.Registry
	logger         *zap.SugaredLogger
}

type BookingServiceOption func(*BookingService)

func WithLocker(locker Locker, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

func WithEvents(events *kafka.Emitter) BookingServiceOption {
	return func(s *BookingService) {
		s.events = events
	}
}

func WithMaxAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithRequestTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.requestTimeout = d
	}
}

// WithStrictCalendar rejects departure days that do not exist in their month.
func WithStrictCalendar(strict bool) BookingServiceOption {
	return func(s *BookingService) {
		s.strictCalendar = strict
	}
}

func WithMetrics(reg *metrics.Registry) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = reg
	}
}

func WithLogger(logger *zap.SugaredLogger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func NewBookingService(store repository.Store, generator reference.Generator, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		store:       store,
		lookup:      lookup.New(store.Repos()),
		generator:   generator,
		maxAttempts: DefaultMaxAttempts,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type bookingRequest struct {
	passport     string
	origin       string
	destination  string
	departure    domain.Date
	flightNumber string
}

func (s *BookingService) validate(input BookFlightInput) (bookingRequest, error) {
	var (
		req bookingRequest
		err error
	)
	if req.passport, err = validation.Passport(input.Passport); err != nil {
		return req, err
	}
	if req.origin, err = validation.Place("origin", input.Origin); err != nil {
		return req, err
	}
	if req.destination, err = validation.Place("destination", input.Destination); err != nil {
		return req, err
	}
	if req.departure, err = validation.DepartureDate(input.Date, s.strictCalendar); err != nil {
		return req, err
	}
	if input.FlightNumber != "" {
		if req.flightNumber, err = validation.FlightNumber(input.FlightNumber); err != nil {
			return req, err
		}
	}
	return req, nil
}

// BookFlight reserves one seat for the passenger on the route and date. The
// duplicate check, capacity check and insert run in one transaction that is
// retried with a fresh reference when it loses a race.
func (s *BookingService) BookFlight(ctx context.Context, input BookFlightInput) (*domain.Booking, error) {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	booking, attempts, err := s.bookFlight(ctx, input)
	s.metrics.ObserveBooking(Outcome(err), attempts)
	if err != nil {
		s.logResult(input, err)
		return nil, err
	}

	s.logger.Infow("booking created",
		"reference", booking.Reference,
		"flight_number", booking.FlightNumber,
		"departure", booking.Departure.String(),
		"passenger_id", booking.PassengerID,
		"attempts", attempts,
	)

	event := kafka.NewEvent(kafka.EventBookingCreated)
	event.Reference = booking.Reference
	event.FlightNumber = booking.FlightNumber
	event.Departure = booking.Departure.String()
	event.PassengerID = booking.PassengerID
	event.Origin = input.Origin
	event.Destination = input.Destination
	s.events.Emit(ctx, event)

	return booking, nil
}

func (s *BookingService) bookFlight(ctx context.Context, input BookFlightInput) (*domain.Booking, int, error) {
	req, err := s.validate(input)
	if err != nil {
		return nil, 0, err
	}

	passenger, err := s.lookup.ResolvePassenger(ctx, req.passport)
	if err != nil {
		return nil, 0, err
	}

	candidates, err := s.lookup.FindRoute(ctx, req.origin, req.destination)
	if err != nil {
		return nil, 0, err
	}
	flight, err := pickFlight(candidates, req.flightNumber)
	if err != nil {
		return nil, 0, err
	}

	release, err := s.lockDeparture(ctx, flight.FlightNumber, req.departure)
	if err != nil {
		return nil, 0, err
	}
	defer release()

	var booking *domain.Booking
	attempts, err := repository.WithRetry(ctx, s.store, s.maxAttempts, func(ctx context.Context, repos repository.Repositories) error {
		b, err := s.reserve(ctx, repos, flight.FlightNumber, passenger.ID, req.departure)
		if err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, attempts, err
	}
	return booking, attempts, nil
}

// reserve is one transaction attempt. A full departure is reported before a
// duplicate one. Any error rolls the transaction back.
func (s *BookingService) reserve(ctx context.Context, repos repository.Repositories, flightNumber string, passengerID int64, departure domain.Date) (*domain.Booking, error) {
	if err := repos.Bookings.LockDeparture(ctx, flightNumber, departure); err != nil {
		return nil, err
	}

	flight, err := repos.Flights.GetByNumber(ctx, flightNumber)
	if err != nil {
		return nil, err
	}
	booked, err := repos.Bookings.CountForDeparture(ctx, flightNumber, departure)
	if err != nil {
		return nil, err
	}
	if flight.Seats-booked <= 0 {
		return nil, fmt.Errorf("flight %s on %s has %d of %d seats booked: %w", flightNumber, departure, booked, flight.Seats, domain.ErrCapacityExceeded)
	}

	duplicate, err := repos.Bookings.Exists(ctx, flightNumber, passengerID, departure)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, fmt.Errorf("passenger %d on flight %s %s: %w", passengerID, flightNumber, departure, domain.ErrDuplicate)
	}

	ref, err := s.generator.Generate()
	if err != nil {
		return nil, &domain.StorageError{Op: "generate booking reference", Err: err}
	}
	booking := &domain.Booking{
		Reference:    ref,
		Departure:    departure,
		FlightNumber: flightNumber,
		PassengerID:  passengerID,
	}
	if err := repos.Bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	stored, err := repos.Bookings.GetByReference(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.StorageError{Op: "verify booking", Err: fmt.Errorf("booking %s not readable after insert", ref)}
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// lockDeparture takes the distributed lock when a Locker is configured. It
// polls until the lock is free, at most maxAttempts times.
func (s *BookingService) lockDeparture(ctx context.Context, flightNumber string, departure domain.Date) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		token, ok, err := s.locker.AcquireDepartureLock(ctx, flightNumber, departure, s.lockTTL)
		if err != nil {
			// the database transaction still serializes the booking
			s.logger.Warnw("departure lock unavailable", "flight_number", flightNumber, "departure", departure.String(), "error", err)
			return noop, nil
		}
		if ok {
			return func() {
				if err := s.locker.ReleaseDepartureLock(context.WithoutCancel(ctx), flightNumber, departure, token); err != nil {
					s.logger.Warnw("failed to release departure lock", "flight_number", flightNumber, "error", err)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, domain.Storage("acquire departure lock", ctx.Err())
		case <-time.After(time.Duration(attempt) * lockRetryDelay):
		}
	}
	return nil, fmt.Errorf("departure %s %s is locked: %w", flightNumber, departure, domain.ErrContention)
}

func (s *BookingService) GetBooking(ctx context.Context, ref string) (*domain.Booking, error) {
	if !reference.Valid(ref) {
		return nil, domain.NewValidationError("reference", "must be 10 upper case letters or digits")
	}
	booking, err := s.store.Repos().Bookings.GetByReference(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", ref, err)
	}
	return booking, nil
}

func pickFlight(candidates []domain.Flight, flightNumber string) (domain.Flight, error) {
	if flightNumber == "" {
		return candidates[0], nil
	}
	for _, f := range candidates {
		if f.FlightNumber == flightNumber {
			return f, nil
		}
	}
	return domain.Flight{}, fmt.Errorf("flight %s on this route: %w", flightNumber, domain.ErrNotFound)
}

func (s *BookingService) logResult(input BookFlightInput, err error) {
	fields := []interface{}{
		"origin", input.Origin,
		"destination", input.Destination,
		"date", input.Date,
		"outcome", Outcome(err),
		"error", err,
	}
	var se *domain.StorageError
	if errors.As(err, &se) || errors.Is(err, domain.ErrContention) {
		s.logger.Errorw("booking failed", fields...)
		return
	}
	s.logger.Infow("booking rejected", fields...)
}

// Outcome labels a BookFlight result for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "booked"
	case domain.IsValidation(err):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrContention):
		return "contention"
	case domain.IsCancellation(err):
		return "timeout"
	default:
		return "storage_error"
	}
}

var _ BookingUseCase = (*BookingService)(nil)
