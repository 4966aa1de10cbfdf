package api

import (
	"net/http"

	"github.com/Domenick1991/airreservations/internal/service/passengers"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PassengerHandler struct {
	service passengers.PassengerUseCase
	logger  *zap.SugaredLogger
}

type addPassengerRequest struct {
	PassportNumber string `json:"passport_number"`
	FullName       string `json:"full_name"`
	BirthDate      string `json:"birth_date"`
	Country        string `json:"country"`
}

func NewPassengerHandler(service passengers.PassengerUseCase, logger *zap.SugaredLogger) *PassengerHandler {
	return &PassengerHandler{service: service, logger: logger}
}

func (h *PassengerHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.add)
}

func (h *PassengerHandler) add(c *gin.Context) {
	var req addPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.service.AddPassenger(c.Request.Context(), passengers.AddPassengerInput(req))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
