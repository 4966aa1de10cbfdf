// Package reports serves the read-only reporting queries over the reservation
// tables. It works on any sqlx connection, postgres or sqlite.
package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	queryAvailableFlights = `
SELECT airline_id, flight_num, origin, destination, plane, seats, duration
FROM flight
WHERE origin = ? AND destination = ? AND seats > 0
ORDER BY flight_num`

	queryFlightsByDuration = `
SELECT airline_id, flight_num, origin, destination, plane, seats, duration
FROM flight
WHERE origin = ? AND destination = ?
ORDER BY duration DESC, flight_num`

	queryPopularDestinations = `
SELECT destination, COUNT(DISTINCT flight_num) AS routes
FROM flight
GROUP BY destination
ORDER BY routes DESC, destination
LIMIT ?`

	queryHighestRated = `
SELECT f.flight_num, a.name AS airline_name, f.origin, f.destination, f.plane, f.seats,
       AVG(CAST(r.score AS FLOAT)) AS avg_score
FROM ratings r
JOIN flight f ON f.flight_num = r.flight_num
JOIN airline a ON a.id = f.airline_id
GROUP BY f.flight_num, a.name, f.origin, f.destination, f.plane, f.seats
ORDER BY avg_score DESC, f.flight_num
LIMIT ?`

	querySeats = `
SELECT f.flight_num, f.origin, f.destination, f.seats,
       (SELECT COUNT(*) FROM booking b WHERE b.flight_num = f.flight_num AND b.departure = ?) AS booked
FROM flight f
WHERE f.flight_num = ?`
)

type flightRow struct {
	AirlineID   int64  `db:"airline_id"`
	FlightNum   string `db:"flight_num"`
	Origin      string `db:"origin"`
	Destination string `db:"destination"`
	Plane       string `db:"plane"`
	Seats       int    `db:"seats"`
	Duration    int    `db:"duration"`
}

func (r flightRow) toDomain() domain.Flight {
	return domain.Flight{
		AirlineID:    r.AirlineID,
		FlightNumber: r.FlightNum,
		Origin:       r.Origin,
		Destination:  r.Destination,
		Plane:        r.Plane,
		Seats:        r.Seats,
		Duration:     r.Duration,
	}
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Open connects with the database/sql driver matching the store driver name.
func Open(driver, dsn string) (*sqlx.DB, error) {
	name := driver
	if driver == "sqlite" {
		name = "sqlite3"
	}
	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

func (r *Repository) ListAvailableFlights(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	return r.selectFlights(ctx, "list available flights", queryAvailableFlights, origin, destination)
}

func (r *Repository) FlightsByDuration(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	return r.selectFlights(ctx, "list flights by duration", queryFlightsByDuration, origin, destination)
}

func (r *Repository) selectFlights(ctx context.Context, op, query string, args ...interface{}) ([]domain.Flight, error) {
	var rows []flightRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, domain.Storage(op, err)
	}
	flights := make([]domain.Flight, 0, len(rows))
	for _, row := range rows {
		flights = append(flights, row.toDomain())
	}
	return flights, nil
}

func (r *Repository) MostPopularDestinations(ctx context.Context, k int) ([]domain.DestinationCount, error) {
	out := []domain.DestinationCount{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(queryPopularDestinations), k); err != nil {
		return nil, domain.Storage("list popular destinations", err)
	}
	return out, nil
}

func (r *Repository) HighestRatedRoutes(ctx context.Context, k int) ([]domain.RatedRoute, error) {
	out := []domain.RatedRoute{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(queryHighestRated), k); err != nil {
		return nil, domain.Storage("list highest rated routes", err)
	}
	return out, nil
}

// AvailableSeats reports capacity, bookings and remaining seats of one departure.
func (r *Repository) AvailableSeats(ctx context.Context, flightNumber string, departure domain.Date) (*domain.SeatAvailability, error) {
	var row struct {
		FlightNum   string `db:"flight_num"`
		Origin      string `db:"origin"`
		Destination string `db:"destination"`
		Seats       int    `db:"seats"`
		Booked      int    `db:"booked"`
	}
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(querySeats), departure.String(), flightNumber).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("flight %s: %w", flightNumber, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.Storage("count available seats", err)
	}

	available := row.Seats - row.Booked
	if available < 0 {
		available = 0
	}
	return &domain.SeatAvailability{
		FlightNumber: row.FlightNum,
		Origin:       row.Origin,
		Destination:  row.Destination,
		Departure:    departure.String(),
		Seats:        row.Seats,
		Booked:       row.Booked,
		Available:    available,
	}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}
