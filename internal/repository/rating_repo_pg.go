package repository

import (
	"context"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PGRatingRepository struct {
	db DBTX
}

func NewRatingRepository(db DBTX) RatingRepository {
	return &PGRatingRepository{db: db}
}

func (r *PGRatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	_, err := r.db.Exec(ctx, `INSERT INTO ratings (id, passenger_id, flight_num, score, comment) VALUES ($1, $2, $3, $4, $5)`,
		rating.ID, rating.PassengerID, rating.FlightNumber, rating.Score, rating.Comment)
	return mapPGError("insert rating", err)
}

type PGKeyAllocator struct {
	db DBTX
}

func NewKeyAllocator(db DBTX) KeyAllocator {
	return &PGKeyAllocator{db: db}
}

// NextID returns MAX(column)+1, or 1 for an empty table. It is only safe when
// the insert using the id runs in the same transaction and a key collision is
// retried.
func (a *PGKeyAllocator) NextID(ctx context.Context, table, column string) (int64, error) {
	if err := CheckKeyColumn(table, column); err != nil {
		return 0, err
	}
	query := `SELECT COALESCE(MAX(` + pgx.Identifier{column}.Sanitize() + `), 0) + 1 FROM ` + pgx.Identifier{table}.Sanitize()
	var next int64
	if err := a.db.QueryRow(ctx, query).Scan(&next); err != nil {
		return 0, mapPGError("next id", err)
	}
	return next, nil
}

var (
	_ RatingRepository = (*PGRatingRepository)(nil)
	_ KeyAllocator     = (*PGKeyAllocator)(nil)
)
