package gormstore

import (
	"time"

	"github.com/Domenick1991/airreservations/internal/domain"
)

type airlineModel struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:name;size:24;not null"`
}

func (airlineModel) TableName() string { return "airline" }

type passengerModel struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	PassportNum string `gorm:"column:passport_num;size:8;not null;uniqueIndex:passenger_passport_key"`
	FullName    string `gorm:"column:full_name;size:24;not null"`
	BirthDate   string `gorm:"column:birth_date;size:10;not null"`
	Country     string `gorm:"column:country;size:24;not null"`
}

func (passengerModel) TableName() string { return "passenger" }

type flightModel struct {
	AirlineID   int64  `gorm:"column:airline_id;not null"`
	FlightNum   string `gorm:"column:flight_num;size:8;primaryKey"`
	Origin      string `gorm:"column:origin;size:16;not null;index:flight_route_idx"`
	Destination string `gorm:"column:destination;size:16;not null;index:flight_route_idx"`
	Plane       string `gorm:"column:plane;size:16;not null"`
	Seats       int    `gorm:"column:seats;not null;check:flight_seats_check,seats BETWEEN 1 AND 500"`
	Duration    int    `gorm:"column:duration;not null;check:flight_duration_check,duration BETWEEN 1 AND 24"`

	Airline airlineModel `gorm:"foreignKey:AirlineID;references:ID"`
}

func (flightModel) TableName() string { return "flight" }

type bookingModel struct {
	BookRef     string    `gorm:"column:book_ref;size:10;primaryKey"`
	Departure   string    `gorm:"column:departure;size:10;not null;uniqueIndex:booking_flight_passenger_departure_key,priority:3"`
	FlightNum   string    `gorm:"column:flight_num;size:8;not null;uniqueIndex:booking_flight_passenger_departure_key,priority:1"`
	PassengerID int64     `gorm:"column:passenger_id;not null;uniqueIndex:booking_flight_passenger_departure_key,priority:2"`
	CreatedAt   time.Time `gorm:"column:created_at"`

	Flight    flightModel    `gorm:"foreignKey:FlightNum;references:FlightNum"`
	Passenger passengerModel `gorm:"foreignKey:PassengerID;references:ID"`
}

func (bookingModel) TableName() string { return "booking" }

type ratingModel struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	PassengerID int64  `gorm:"column:passenger_id;not null"`
	FlightNum   string `gorm:"column:flight_num;size:8;not null"`
	Score       int    `gorm:"column:score;not null;check:ratings_score_check,score BETWEEN 0 AND 5"`
	Comment     string `gorm:"column:comment;not null;default:''"`

	Flight    flightModel    `gorm:"foreignKey:FlightNum;references:FlightNum"`
	Passenger passengerModel `gorm:"foreignKey:PassengerID;references:ID"`
}

func (ratingModel) TableName() string { return "ratings" }

func passengerToDomain(m passengerModel) (*domain.Passenger, error) {
	p := &domain.Passenger{
		ID:         m.ID,
		PassportNo: m.PassportNum,
		FullName:   m.FullName,
		Country:    m.Country,
	}
	if err := p.BirthDate.UnmarshalText([]byte(m.BirthDate)); err != nil {
		return nil, err
	}
	return p, nil
}

func flightToDomain(m flightModel) domain.Flight {
	return domain.Flight{
		AirlineID:    m.AirlineID,
		FlightNumber: m.FlightNum,
		Origin:       m.Origin,
		Destination:  m.Destination,
		Plane:        m.Plane,
		Seats:        m.Seats,
		Duration:     m.Duration,
	}
}

func bookingToDomain(m bookingModel) (*domain.Booking, error) {
	b := &domain.Booking{
		Reference:    m.BookRef,
		FlightNumber: m.FlightNum,
		PassengerID:  m.PassengerID,
		CreatedAt:    m.CreatedAt,
	}
	if err := b.Departure.UnmarshalText([]byte(m.Departure)); err != nil {
		return nil, err
	}
	return b, nil
}
