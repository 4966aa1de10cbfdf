package api

import (
	"encoding/json"
	"net/http"

	"github.com/Domenick1991/airreservations/internal/service/flights"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouteHandler struct {
	service flights.FlightUseCase
	logger  *zap.SugaredLogger
}

type insertRouteRequest struct {
	AirlineID    json.Number `json:"airline_id"`
	FlightNumber string      `json:"flight_number"`
	Origin       string      `json:"origin"`
	Destination  string      `json:"destination"`
	Plane        string      `json:"plane"`
	Seats        json.Number `json:"seats"`
	Duration     json.Number `json:"duration"`
}

type existFlightResponse struct {
	FlightNumber string `json:"flight_number"`
	Exists       bool   `json:"exists"`
}

func NewRouteHandler(service flights.FlightUseCase, logger *zap.SugaredLogger) *RouteHandler {
	return &RouteHandler{service: service, logger: logger}
}

// Register mounts the public route reads. The insert endpoint is mounted by
// RegisterAdmin behind the admin guard.
func (h *RouteHandler) Register(router *gin.RouterGroup) {
	router.GET("/top-rated", h.topRated)
	router.GET("/:flight", h.exists)
}

func (h *RouteHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.insert)
}

func (h *RouteHandler) insert(c *gin.Context) {
	var req insertRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	f, err := h.service.InsertRoute(c.Request.Context(), flights.InsertRouteInput{
		AirlineID:    req.AirlineID.String(),
		FlightNumber: req.FlightNumber,
		Origin:       req.Origin,
		Destination:  req.Destination,
		Plane:        req.Plane,
		Seats:        req.Seats.String(),
		Duration:     req.Duration.String(),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *RouteHandler) exists(c *gin.Context) {
	number := c.Param("flight")
	ok, err := h.service.ExistFlight(c.Request.Context(), number)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, existFlightResponse{FlightNumber: number, Exists: ok})
}

func (h *RouteHandler) topRated(c *gin.Context) {
	k, ok := queryCount(c)
	if !ok {
		return
	}
	routes, err := h.service.TopRatedRoutes(c.Request.Context(), k)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}
