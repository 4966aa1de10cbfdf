package repository

import (
	"context"

	"github.com/Domenick1991/airreservations/internal/domain"
)

type PGPassengerRepository struct {
	db DBTX
}

func NewPassengerRepository(db DBTX) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

func (r *PGPassengerRepository) GetByPassport(ctx context.Context, passport string) (*domain.Passenger, error) {
	row := r.db.QueryRow(ctx, `SELECT id, passport_num, full_name, birth_date, country FROM passenger WHERE passport_num=$1`, passport)
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.PassportNo, &p.FullName, &p.BirthDate, &p.Country); err != nil {
		return nil, mapPGError("get passenger by passport", err)
	}
	return &p, nil
}

func (r *PGPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	row := r.db.QueryRow(ctx, `SELECT id, passport_num, full_name, birth_date, country FROM passenger WHERE id=$1`, id)
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.PassportNo, &p.FullName, &p.BirthDate, &p.Country); err != nil {
		return nil, mapPGError("get passenger by id", err)
	}
	return &p, nil
}

func (r *PGPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	_, err := r.db.Exec(ctx, `INSERT INTO passenger (id, passport_num, full_name, birth_date, country) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.PassportNo, p.FullName, p.BirthDate, p.Country)
	return mapPGError("insert passenger", err)
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
