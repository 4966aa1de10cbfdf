package gormstore

import (
	"context"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type passengerRepository struct {
	db *gorm.DB
}

func (r *passengerRepository) GetByPassport(ctx context.Context, passport string) (*domain.Passenger, error) {
	var m passengerModel
	if err := r.db.WithContext(ctx).Where("passport_num = ?", passport).Take(&m).Error; err != nil {
		return nil, mapError("get passenger by passport", err)
	}
	return passengerToDomain(m)
}

func (r *passengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	var m passengerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, mapError("get passenger by id", err)
	}
	return passengerToDomain(m)
}

func (r *passengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	err := r.db.WithContext(ctx).Create(&passengerModel{
		ID:          p.ID,
		PassportNum: p.PassportNo,
		FullName:    p.FullName,
		BirthDate:   p.BirthDate.String(),
		Country:     p.Country,
	}).Error
	return mapError("insert passenger", err)
}

type flightRepository struct {
	db *gorm.DB
}

func (r *flightRepository) GetByNumber(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	var m flightModel
	if err := r.db.WithContext(ctx).Where("flight_num = ?", flightNumber).Take(&m).Error; err != nil {
		return nil, mapError("get flight", err)
	}
	f := flightToDomain(m)
	return &f, nil
}

func (r *flightRepository) FindRoute(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	var models []flightModel
	err := r.db.WithContext(ctx).
		Where("origin = ? AND destination = ? AND seats > 0", origin, destination).
		Order("flight_num").
		Find(&models).Error
	if err != nil {
		return nil, mapError("find route", err)
	}
	flights := make([]domain.Flight, 0, len(models))
	for _, m := range models {
		flights = append(flights, flightToDomain(m))
	}
	return flights, nil
}

func (r *flightRepository) AirlineExists(ctx context.Context, airlineID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&airlineModel{}).Where("id = ?", airlineID).Count(&n).Error
	return n > 0, mapError("check airline", err)
}

func (r *flightRepository) Create(ctx context.Context, f *domain.Flight) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&flightModel{
		AirlineID:   f.AirlineID,
		FlightNum:   f.FlightNumber,
		Origin:      f.Origin,
		Destination: f.Destination,
		Plane:       f.Plane,
		Seats:       f.Seats,
		Duration:    f.Duration,
	}).Error
	return mapError("insert flight", err)
}

type bookingRepository struct {
	db      *gorm.DB
	dialect string
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := bookingModel{
		BookRef:     b.Reference,
		Departure:   b.Departure.String(),
		FlightNum:   b.FlightNumber,
		PassengerID: b.PassengerID,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return mapError("insert booking", err)
	}
	b.CreatedAt = m.CreatedAt
	return nil
}

func (r *bookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).Where("book_ref = ?", reference).Take(&m).Error; err != nil {
		return nil, mapError("get booking", err)
	}
	return bookingToDomain(m)
}

func (r *bookingRepository) Exists(ctx context.Context, flightNumber string, passengerID int64, departure domain.Date) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("flight_num = ? AND passenger_id = ? AND departure = ?", flightNumber, passengerID, departure.String()).
		Count(&n).Error
	return n > 0, mapError("check booking", err)
}

func (r *bookingRepository) HasBookedFlight(ctx context.Context, flightNumber string, passengerID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("flight_num = ? AND passenger_id = ?", flightNumber, passengerID).
		Count(&n).Error
	return n > 0, mapError("check passenger booking", err)
}

func (r *bookingRepository) CountForDeparture(ctx context.Context, flightNumber string, departure domain.Date) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("flight_num = ? AND departure = ?", flightNumber, departure.String()).
		Count(&n).Error
	return int(n), mapError("count bookings", err)
}

// LockDeparture takes a transaction-scoped advisory lock on postgres. sqlite
// transactions already hold the database write lock.
func (r *bookingRepository) LockDeparture(ctx context.Context, flightNumber string, departure domain.Date) error {
	if r.dialect != DialectPostgres {
		return nil
	}
	err := r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", flightNumber+"|"+departure.String()).Error
	return mapError("lock departure", err)
}

type ratingRepository struct {
	db *gorm.DB
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&ratingModel{
		ID:          rating.ID,
		PassengerID: rating.PassengerID,
		FlightNum:   rating.FlightNumber,
		Score:       rating.Score,
		Comment:     rating.Comment,
	}).Error
	return mapError("insert rating", err)
}

type keyAllocator struct {
	db *gorm.DB
}

func (a *keyAllocator) NextID(ctx context.Context, table, column string) (int64, error) {
	if err := repository.CheckKeyColumn(table, column); err != nil {
		return 0, err
	}
	var next int64
	row := a.db.WithContext(ctx).Raw("SELECT COALESCE(MAX(" + column + "), 0) + 1 FROM " + table).Row()
	if err := row.Scan(&next); err != nil {
		return 0, mapError("next id", err)
	}
	return next, nil
}

var (
	_ repository.PassengerRepository = (*passengerRepository)(nil)
	_ repository.FlightRepository    = (*flightRepository)(nil)
	_ repository.BookingRepository   = (*bookingRepository)(nil)
	_ repository.RatingRepository    = (*ratingRepository)(nil)
	_ repository.KeyAllocator        = (*keyAllocator)(nil)
)
