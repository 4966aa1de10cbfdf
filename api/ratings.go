package api

import (
	"encoding/json"
	"net/http"

	"github.com/Domenick1991/airreservations/internal/service/ratings"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RatingHandler struct {
	service ratings.RatingUseCase
	logger  *zap.SugaredLogger
}

// submitRatingRequest takes numbers either bare or quoted; the service
// validates their exact form.
type submitRatingRequest struct {
	FlightNumber string      `json:"flight_number"`
	PassengerID  json.Number `json:"passenger_id"`
	Score        json.Number `json:"score"`
	Comment      string      `json:"comment"`
}

func NewRatingHandler(service ratings.RatingUseCase, logger *zap.SugaredLogger) *RatingHandler {
	return &RatingHandler{service: service, logger: logger}
}

func (h *RatingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.submit)
}

func (h *RatingHandler) submit(c *gin.Context) {
	var req submitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	r, err := h.service.SubmitRating(c.Request.Context(), ratings.SubmitRatingInput{
		FlightNumber: req.FlightNumber,
		PassengerID:  req.PassengerID.String(),
		Score:        req.Score.String(),
		Comment:      req.Comment,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}
