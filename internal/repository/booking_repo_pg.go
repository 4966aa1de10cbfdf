package repository

import (
	"context"

	"github.com/Domenick1991/airreservations/internal/domain"
)

type PGBookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO booking (book_ref, departure, flight_num, passenger_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`, b.Reference, b.Departure, b.FlightNumber, b.PassengerID).
		Scan(&b.CreatedAt)
	return mapPGError("insert booking", err)
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT book_ref, departure, flight_num, passenger_id, created_at FROM booking WHERE book_ref=$1`, reference)
	var b domain.Booking
	if err := row.Scan(&b.Reference, &b.Departure, &b.FlightNumber, &b.PassengerID, &b.CreatedAt); err != nil {
		return nil, mapPGError("get booking", err)
	}
	return &b, nil
}

func (r *PGBookingRepository) Exists(ctx context.Context, flightNumber string, passengerID int64, departure domain.Date) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM booking WHERE flight_num=$1 AND passenger_id=$2 AND departure=$3)`,
		flightNumber, passengerID, departure).Scan(&exists)
	return exists, mapPGError("check booking", err)
}

func (r *PGBookingRepository) HasBookedFlight(ctx context.Context, flightNumber string, passengerID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM booking WHERE flight_num=$1 AND passenger_id=$2)`,
		flightNumber, passengerID).Scan(&exists)
	return exists, mapPGError("check passenger booking", err)
}

func (r *PGBookingRepository) CountForDeparture(ctx context.Context, flightNumber string, departure domain.Date) (int, error) {
	var booked int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM booking WHERE flight_num=$1 AND departure=$2`, flightNumber, departure).Scan(&booked)
	return booked, mapPGError("count bookings", err)
}

func (r *PGBookingRepository) LockDeparture(ctx context.Context, flightNumber string, departure domain.Date) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, departureLockKey(flightNumber, departure))
	return mapPGError("lock departure", err)
}

func departureLockKey(flightNumber string, departure domain.Date) string {
	return flightNumber + "|" + departure.String()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
