package domain

type Rating struct {
	ID           int64  `json:"id"`
	PassengerID  int64  `json:"passenger_id"`
	FlightNumber string `json:"flight_number"`
	Score        int    `json:"score"`
	Comment      string `json:"comment"`
}
