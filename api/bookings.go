package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service booking.BookingUseCase
	logger  *zap.SugaredLogger
}

type createBookingRequest struct {
	PassportNumber string `json:"passport_number"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Date           string `json:"date"`
	FlightNumber   string `json:"flight_number"`
}

type bookingResponse struct {
	Reference    string `json:"reference"`
	FlightNumber string `json:"flight_number"`
	Departure    string `json:"departure"`
	PassengerID  int64  `json:"passenger_id"`
	CreatedAt    string `json:"created_at,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase, logger *zap.SugaredLogger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:ref", h.get)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.service.BookFlight(c.Request.Context(), booking.BookFlightInput{
		Passport:     req.PassportNumber,
		Origin:       req.Origin,
		Destination:  req.Destination,
		Date:         req.Date,
		FlightNumber: req.FlightNumber,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		Reference:    b.Reference,
		FlightNumber: b.FlightNumber,
		Departure:    b.Departure.String(),
		PassengerID:  b.PassengerID,
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
