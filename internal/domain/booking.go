package domain

import "time"

// Booking is one committed reservation. Rows are never updated once written.
type Booking struct {
	Reference    string    `json:"reference"`
	Departure    Date      `json:"departure"`
	FlightNumber string    `json:"flight_number"`
	PassengerID  int64     `json:"passenger_id"`
	CreatedAt    time.Time `json:"created_at"`
}
