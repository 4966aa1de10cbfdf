package ratings

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

type RatingUseCase interface {
	SubmitRating(ctx context.Context, input SubmitRatingInput) (*domain.Rating, error)
}

type SubmitRatingInput struct {
	FlightNumber string
	PassengerID  string
	Score        string
	Comment      string
}

type RatingService struct {
	store       repository.Store
	events      *kafka.Emitter
	maxAttempts int
	metrics     *metrics.Registry
	logger      *zap.SugaredLogger
}

type RatingServiceOption func(*RatingService)

func WithEvents(events *kafka.Emitter) RatingServiceOption {
	return func(s *RatingService) { s.events = events }
}

func WithMaxAttempts(n int) RatingServiceOption {
	return func(s *RatingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithMetrics(reg *metrics.Registry) RatingServiceOption {
	return func(s *RatingService) { s.metrics = reg }
}

func WithLogger(logger *zap.SugaredLogger) RatingServiceOption {
	return func(s *RatingService) { s.logger = logger }
}

func NewRatingService(store repository.Store, opts ...RatingServiceOption) *RatingService {
	s := &RatingService{
		store:       store,
		maxAttempts: 5,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateRating(input SubmitRatingInput) (*domain.Rating, error) {
	var (
		r   domain.Rating
		err error
	)
	if r.FlightNumber, err = validation.FlightNumber(input.FlightNumber); err != nil {
		return nil, err
	}
	if r.PassengerID, err = validation.ID("passenger_id", input.PassengerID); err != nil {
		return nil, err
	}
	if r.Score, err = validation.Score(input.Score); err != nil {
		return nil, err
	}
	r.Comment = input.Comment
	return &r, nil
}

// SubmitRating records a passenger's review of a flight they booked. Nothing
// is written when the flight, the passenger or the booking is missing.
func (s *RatingService) SubmitRating(ctx context.Context, input SubmitRatingInput) (*domain.Rating, error) {
	rating, err := validateRating(input)
	if err != nil {
		s.metrics.ObserveOperation("submit_rating", "invalid")
		return nil, err
	}

	_, err = repository.WithRetry(ctx, s.store, s.maxAttempts, func(ctx context.Context, repos repository.Repositories) error {
		l := lookup.New(repos)

		exists, err := l.ExistFlight(ctx, rating.FlightNumber)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("flight %s: %w", rating.FlightNumber, domain.ErrNotFound)
		}
		if _, err := l.PassengerByID(ctx, rating.PassengerID); err != nil {
			return err
		}
		booked, err := l.PassengerHasBooking(ctx, rating.FlightNumber, rating.PassengerID)
		if err != nil {
			return err
		}
		if !booked {
			return fmt.Errorf("passenger %d on flight %s: %w", rating.PassengerID, rating.FlightNumber, domain.ErrNotBooked)
		}

		id, err := repos.Keys.NextID(ctx, repository.TableRatings, repository.ColumnID)
		if err != nil {
			return domain.Storage("allocate rating id", err)
		}
		rating.ID = id
		return repos.Ratings.Create(ctx, rating)
	})
	if err != nil {
		s.metrics.ObserveOperation("submit_rating", outcome(err))
		s.logger.Infow("rating rejected", "flight_number", rating.FlightNumber, "passenger_id", rating.PassengerID, "error", err)
		return nil, err
	}

	s.metrics.ObserveOperation("submit_rating", "ok")
	s.logger.Infow("rating submitted", "rating_id", rating.ID, "flight_number", rating.FlightNumber)

	event := kafka.NewEvent(kafka.EventRatingSubmitted)
	event.FlightNumber = rating.FlightNumber
	event.PassengerID = rating.PassengerID
	score := rating.Score
	event.Score = &score
	s.events.Emit(ctx, event)

	return rating, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotBooked):
		return "not_booked"
	case errors.Is(err, domain.ErrContention):
		return "contention"
	default:
		return "storage_error"
	}
}

var _ RatingUseCase = (*RatingService)(nil)
