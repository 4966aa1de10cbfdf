package passengers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/kafka"
	"github.com/Domenick1991/airreservations/internal/logging"
	"github.com/Domenick1991/airreservations/internal/metrics"
	"github.com/Domenick1991/airreservations/internal/repository"
	"github.com/Domenick1991/airreservations/internal/validation"
	"go.uber.org/zap"
)

type PassengerUseCase interface {
	AddPassenger(ctx context.Context, input AddPassengerInput) (*domain.Passenger, error)
}

type AddPassengerInput struct {
	PassportNumber string `json:"passport_number"`
	FullName       string `json:"full_name"`
	BirthDate      string `json:"birth_date"`
	Country        string `json:"country"`
}

type PassengerService struct {
	store          repository.Store
	events         *kafka.Emitter
	maxAttempts    int
	strictCalendar bool
	metrics        *metrics.Registry
	logger         *zap.SugaredLogger
}

type PassengerServiceOption func(*PassengerService)

func WithEvents(events *kafka.Emitter) PassengerServiceOption {
	return func(s *PassengerService) { s.events = events }
}

func WithMaxAttempts(n int) PassengerServiceOption {
	return func(s *PassengerService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithStrictCalendar(strict bool) PassengerServiceOption {
	return func(s *PassengerService) { s.strictCalendar = strict }
}

func WithMetrics(reg *metrics.Registry) PassengerServiceOption {
	return func(s *PassengerService) { s.metrics = reg }
}

func WithLogger(logger *zap.SugaredLogger) PassengerServiceOption {
	return func(s *PassengerService) { s.logger = logger }
}

func NewPassengerService(store repository.Store, opts ...PassengerServiceOption) *PassengerService {
	s := &PassengerService{
		store:       store,
		maxAttempts: 5,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PassengerService) validate(input AddPassengerInput) (*domain.Passenger, error) {
	var (
		p   domain.Passenger
		err error
	)
	if p.PassportNo, err = validation.Passport(input.PassportNumber); err != nil {
		return nil, err
	}
	if p.FullName, err = validation.Name(input.FullName); err != nil {
		return nil, err
	}
	if p.BirthDate, err = validation.BirthDate(input.BirthDate, s.strictCalendar); err != nil {
		return nil, err
	}
	if p.Country, err = validation.Country(input.Country); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddPassenger registers a passenger under the next free surrogate id. The
// passport number must not belong to another passenger.
func (s *PassengerService) AddPassenger(ctx context.Context, input AddPassengerInput) (*domain.Passenger, error) {
	passenger, err := s.validate(input)
	if err != nil {
		s.metrics.ObserveOperation("add_passenger", "invalid")
		return nil, err
	}

	_, err = repository.WithRetry(ctx, s.store, s.maxAttempts, func(ctx context.Context, repos repository.Repositories) error {
		existing, err := repos.Passengers.GetByPassport(ctx, passenger.PassportNo)
		switch {
		case err == nil:
			return fmt.Errorf("passport %s is registered to passenger %d: %w", passenger.PassportNo, existing.ID, domain.ErrDuplicate)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		id, err := repos.Keys.NextID(ctx, repository.TablePassenger, repository.ColumnID)
		if err != nil {
			return domain.Storage("allocate passenger id", err)
		}
		passenger.ID = id
		return repos.Passengers.Create(ctx, passenger)
	})
	if err != nil {
		s.metrics.ObserveOperation("add_passenger", outcome(err))
		s.logger.Infow("passenger rejected", "passport_number", passenger.PassportNo, "error", err)
		return nil, err
	}

	s.metrics.ObserveOperation("add_passenger", "ok")
	s.logger.Infow("passenger added", "passenger_id", passenger.ID)

	event := kafka.NewEvent(kafka.EventPassengerAdded)
	event.PassengerID = passenger.ID
	event.PassengerName = passenger.FullName
	s.events.Emit(ctx, event)

	return passenger, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, domain.ErrContention):
		return "contention"
	default:
		return "storage_error"
	}
}

var _ PassengerUseCase = (*PassengerService)(nil)
