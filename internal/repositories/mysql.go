package repositories

import (
	"database/sql"
	"errors"

	intconfig "transporte/internal/config"
	"transporte/internal/domain"
)

// NewMySQLStore wires every MySQL repository to the same pool.
func NewMySQLStore(db *sql.DB) Store {
	return Store{
		Routes:     RouteRepo{DB: db},
		Vehicles:   VehicleRepo{DB: db},
		Users:      UserRepo{DB: db},
		Departures: DepartureRepo{DB: db},
		Seats:      SeatRepo{DB: db},
		Parcels:    ParcelRepo{DB: db},
	}
}

// pool returns db or the process-wide connection from config.
func pool(db *sql.DB) *sql.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

// notFound maps sql.ErrNoRows to a domain NotFoundError.
func notFound(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return err
}

// affected returns NotFoundError when an update or delete touched no row.
func affected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
