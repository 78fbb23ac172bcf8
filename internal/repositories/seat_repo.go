package repositories

import (
	"context"
	"database/sql"

	intdb "transporte/internal/db"
	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

type SeatRepo struct {
	DB *sql.DB
}

const seatColumns = `id, departure_id, seat_number, passenger_name, national_id, phone, price_cents, kind, status, COALESCE(reserved_by, 0), created_at`

func scanSeat(s rowScanner) (models.SeatAssignment, error) {
	var a models.SeatAssignment
	err := s.Scan(&a.ID, &a.DepartureID, &a.SeatNumber, &a.Passenger.Name, &a.Passenger.NationalID, &a.Passenger.Phone,
		&a.Price, &a.Kind, &a.Status, &a.ReservedBy, &a.CreatedAt)
	return a, err
}

func (r SeatRepo) ListByDeparture(ctx context.Context, departureID domain.ID) ([]models.SeatAssignment, error) {
	rows, err := pool(r.DB).QueryContext(ctx, `
		SELECT `+seatColumns+`
		FROM seat_assignments
		WHERE departure_id = ?
		ORDER BY seat_number
	`, departureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.SeatAssignment{}
	for rows.Next() {
		a, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r SeatRepo) CountByDeparture(ctx context.Context, departureID domain.ID) (int, error) {
	var n int
	err := pool(r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM seat_assignments WHERE departure_id = ?`, departureID).Scan(&n)
	return n, err
}

func (r SeatRepo) GetByID(ctx context.Context, id domain.ID) (models.SeatAssignment, error) {
	a, err := scanSeat(pool(r.DB).QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seat_assignments WHERE id = ? LIMIT 1`, id))
	if err != nil {
		return models.SeatAssignment{}, notFound(err, "seat assignment")
	}
	return a, nil
}

// Create locks the departure row so the occupancy count and the insert see
// the same state. The unique key on (departure_id, seat_number) rejects a
// seat that was taken in the meantime.
func (r SeatRepo) Create(ctx context.Context, a models.SeatAssignment, capacity int) (models.SeatAssignment, error) {
	err := intdb.WithTxRetry(ctx, pool(r.DB), func(tx *sql.Tx) error {
		var locked domain.ID
		if err := tx.QueryRowContext(ctx, `SELECT id FROM departures WHERE id = ? FOR UPDATE`, a.DepartureID).Scan(&locked); err != nil {
			return notFound(err, "departure")
		}

		var taken int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM seat_assignments WHERE departure_id = ? AND seat_number = ?
		`, a.DepartureID, a.SeatNumber).Scan(&taken); err != nil {
			return err
		}
		if taken > 0 {
			return domain.SeatTakenError{DepartureID: a.DepartureID, Seat: a.SeatNumber}
		}

		var occupied int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM seat_assignments WHERE departure_id = ?
		`, a.DepartureID).Scan(&occupied); err != nil {
			return err
		}
		if occupied >= capacity {
			return domain.NoCapacityError{DepartureID: a.DepartureID}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO seat_assignments
				(departure_id, seat_number, passenger_name, national_id, phone, price_cents, kind, status, reserved_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.DepartureID, a.SeatNumber, a.Passenger.Name, a.Passenger.NationalID, a.Passenger.Phone,
			a.Price, a.Kind, a.Status, intdb.NullIfZero(int64(a.ReservedBy)))
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				return domain.SeatTakenError{DepartureID: a.DepartureID, Seat: a.SeatNumber, Err: err}
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		a.ID = domain.ID(id)
		return nil
	})
	if err != nil {
		return a, err
	}
	return r.GetByID(ctx, a.ID)
}

func (r SeatRepo) UpdateStatus(ctx context.Context, id domain.ID, status models.SeatStatus) error {
	res, err := pool(r.DB).ExecContext(ctx, `UPDATE seat_assignments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if err := affected(res, "seat assignment"); err != nil {
		_, err = r.GetByID(ctx, id)
		return err
	}
	return nil
}
