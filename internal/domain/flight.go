package domain

type Airline struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Flight is a route operated by an airline. Seats is the declared capacity;
// remaining seats are derived from the bookings made for a departure date.
type Flight struct {
	AirlineID    int64  `json:"airline_id"`
	FlightNumber string `json:"flight_number"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Plane        string `json:"plane"`
	Seats        int    `json:"seats"`
	Duration     int    `json:"duration"`
}

// SeatAvailability reports how many seats of a flight are taken on a date.
type SeatAvailability struct {
	FlightNumber string `json:"flight_number" db:"flight_num"`
	Origin       string `json:"origin" db:"origin"`
	Destination  string `json:"destination" db:"destination"`
	Departure    string `json:"departure" db:"departure"`
	Seats        int    `json:"seats" db:"seats"`
	Booked       int    `json:"booked" db:"booked"`
	Available    int    `json:"available" db:"available"`
}

type DestinationCount struct {
	Destination string `json:"destination" db:"destination"`
	Routes      int    `json:"routes" db:"routes"`
}

type RatedRoute struct {
	FlightNumber string  `json:"flight_number" db:"flight_num"`
	AirlineName  string  `json:"airline_name" db:"airline_name"`
	Origin       string  `json:"origin" db:"origin"`
	Destination  string  `json:"destination" db:"destination"`
	Plane        string  `json:"plane" db:"plane"`
	Seats        int     `json:"seats" db:"seats"`
	AvgScore     float64 `json:"avg_score" db:"avg_score"`
}
