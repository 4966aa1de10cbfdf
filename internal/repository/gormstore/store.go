// Package gormstore implements the reservation repositories on GORM. It backs
// the single-file sqlite mode and can also run against postgres.
package gormstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/Domenick1991/airreservations/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

type Store struct {
	db        *gorm.DB
	dialect   string
	txOptions *sql.TxOptions
}

// Open connects to dsn with the given dialect. sqlite connections are capped
// at one so that transactions on the same database file never interleave, and
// foreign keys are switched on for that connection.
func Open(dialect, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch dialect {
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dialect, err)
	}

	s := &Store{db: db, dialect: dialect}
	if dialect == DialectSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	} else {
		s.txOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return s, nil
}

// Migrate creates or updates the reservation tables.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&airlineModel{},
		&passengerModel{},
		&flightModel{},
		&bookingModel{},
		&ratingModel{},
	)
}

// CreateAirline registers an airline that routes can reference.
func (s *Store) CreateAirline(ctx context.Context, airline domain.Airline) error {
	err := s.db.WithContext(ctx).Create(&airlineModel{ID: airline.ID, Name: airline.Name}).Error
	return mapError("insert airline", err)
}

func (s *Store) repositories(db *gorm.DB) repository.Repositories {
	return repository.Repositories{
		Passengers: &passengerRepository{db: db},
		Flights:    &flightRepository{db: db},
		Bookings:   &bookingRepository{db: db, dialect: s.dialect},
		Ratings:    &ratingRepository{db: db},
		Keys:       &keyAllocator{db: db},
	}
}

func (s *Store) Repos() repository.Repositories {
	return s.repositories(s.db)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(ctx, s.repositories(tx))
		return fnErr
	}, s.txOptions)
	if fnErr != nil {
		return fnErr
	}
	return mapError("commit", err)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ repository.Store = (*Store)(nil)
