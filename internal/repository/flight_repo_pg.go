package repository

import (
	"context"

	"github.com/Domenick1991/airreservations/internal/domain"
)

type PGFlightRepository struct {
	db DBTX
}

func NewFlightRepository(db DBTX) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT airline_id, flight_num, origin, destination, plane, seats, duration FROM flight WHERE flight_num=$1`, flightNumber)
	var f domain.Flight
	if err := row.Scan(&f.AirlineID, &f.FlightNumber, &f.Origin, &f.Destination, &f.Plane, &f.Seats, &f.Duration); err != nil {
		return nil, mapPGError("get flight", err)
	}
	return &f, nil
}

func (r *PGFlightRepository) FindRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT airline_id, flight_num, origin, destination, plane, seats, duration FROM flight
		WHERE origin=$1 AND destination=$2 AND seats > 0 ORDER BY flight_num`, origin, destination)
	if err != nil {
		return nil, mapPGError("find route", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.AirlineID, &f.FlightNumber, &f.Origin, &f.Destination, &f.Plane, &f.Seats, &f.Duration); err != nil {
			return nil, mapPGError("scan flight", err)
		}
		flights = append(flights, f)
	}
	return flights, mapPGError("find route", rows.Err())
}

func (r *PGFlightRepository) AirlineExists(ctx context.Context, airlineID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM airline WHERE id=$1)`, airlineID).Scan(&exists)
	return exists, mapPGError("check airline", err)
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	_, err := r.db.Exec(ctx, `INSERT INTO flight (airline_id, flight_num, origin, destination, plane, seats, duration) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.AirlineID, f.FlightNumber, f.Origin, f.Destination, f.Plane, f.Seats, f.Duration)
	return mapPGError("insert flight", err)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
