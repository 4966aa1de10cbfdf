package api

import (
	"github.com/Domenick1991/airreservations/internal/auth"
	"github.com/Domenick1991/airreservations/internal/logging"
	"github.com/Domenick1991/airreservations/internal/metrics"
	"github.com/Domenick1991/airreservations/internal/service/booking"
	"github.com/Domenick1991/airreservations/internal/service/flights"
	"github.com/Domenick1991/airreservations/internal/service/passengers"
	"github.com/Domenick1991/airreservations/internal/service/ratings"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Services struct {
	Passengers passengers.PassengerUseCase
	Bookings   booking.BookingUseCase
	Ratings    ratings.RatingUseCase
	Flights    flights.FlightUseCase
}

type RouterOptions struct {
	Logger      *zap.SugaredLogger
	Metrics     *metrics.Registry
	Tokens      *auth.TokenService
	RateLimiter *RateLimiter
}

// NewRouter builds the /api/v1 engine with the request middleware chain.
func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(opts.Logger), Metrics(opts.Metrics))
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware())
	}

	v1 := router.Group("/api/v1")
	admin := RequireAdmin(opts.Tokens)

	NewPassengerHandler(svc.Passengers, opts.Logger).Register(v1.Group("/passengers", admin))
	NewBookingHandler(svc.Bookings, opts.Logger).Register(v1.Group("/bookings"))
	NewRatingHandler(svc.Ratings, opts.Logger).Register(v1.Group("/ratings"))

	routes := NewRouteHandler(svc.Flights, opts.Logger)
	routes.Register(v1.Group("/routes"))
	routes.RegisterAdmin(v1.Group("/routes", admin))

	flightHandler := NewFlightHandler(svc.Flights, opts.Logger)
	flightHandler.Register(v1.Group("/flights"))
	flightHandler.RegisterDestinations(v1.Group("/destinations"))

	return router
}
