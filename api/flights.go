package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/service/flights"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultTopK = 5

type FlightHandler struct {
	service flights.FlightUseCase
	logger  *zap.SugaredLogger
}

func NewFlightHandler(service flights.FlightUseCase, logger *zap.SugaredLogger) *FlightHandler {
	return &FlightHandler{service: service, logger: logger}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/by-duration", h.byDuration)
	router.GET("/:flight/seats", h.seats)
}

// RegisterDestinations mounts the destination report on its own group.
func (h *FlightHandler) RegisterDestinations(router *gin.RouterGroup) {
	router.GET("/popular", h.popularDestinations)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.ListAvailable(c.Request.Context(), c.Query("origin"), c.Query("destination"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *FlightHandler) byDuration(c *gin.Context) {
	list, err := h.service.FlightsByDuration(c.Request.Context(), c.Query("origin"), c.Query("destination"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

func (h *FlightHandler) seats(c *gin.Context) {
	availability, err := h.service.AvailableSeats(c.Request.Context(), c.Param("flight"), c.Query("date"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

func (h *FlightHandler) popularDestinations(c *gin.Context) {
	k, ok := queryCount(c)
	if !ok {
		return
	}
	destinations, err := h.service.PopularDestinations(c.Request.Context(), k)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, destinations)
}

// queryCount reads the k query parameter, defaulting to defaultTopK.
func queryCount(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("k", strconv.Itoa(defaultTopK))
	k, err := strconv.Atoi(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Error: "invalid k: must be numeric", Field: "k", Reason: "must be numeric",
		})
		return 0, false
	}
	return k, true
}

func nonNil(list []domain.Flight) []domain.Flight {
	if list == nil {
		return []domain.Flight{}
	}
	return list
}
