package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	intdb "transporte/internal/db"
	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

type DepartureRepo struct {
	DB *sql.DB
}

const departureColumns = `id, route_id, vehicle_id, driver_id, scheduled_at, status, created_at, updated_at`

// departureLockTimeout bounds GET_LOCK while two admins schedule the same vehicle.
const departureLockTimeout = 5

func scanDeparture(s rowScanner) (models.Departure, error) {
	var d models.Departure
	err := s.Scan(&d.ID, &d.RouteID, &d.VehicleID, &d.DriverID, &d.ScheduledAt, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r DepartureRepo) GetByID(ctx context.Context, id domain.ID) (models.Departure, error) {
	d, err := scanDeparture(pool(r.DB).QueryRowContext(ctx, `SELECT `+departureColumns+` FROM departures WHERE id = ? LIMIT 1`, id))
	if err != nil {
		return models.Departure{}, notFound(err, "departure")
	}
	return d, nil
}

// buildDepartureQuery renders the WHERE and ORDER BY clauses for f.
func buildDepartureQuery(f DepartureFilter) (string, []any) {
	where := []string{}
	args := []any{}
	if !f.From.IsZero() {
		where = append(where, "scheduled_at >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "scheduled_at < ?")
		args = append(args, f.To)
	}
	if len(f.Statuses) > 0 {
		marks := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			marks[i] = "?"
			args = append(args, st)
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}
	if f.VehicleID != 0 {
		where = append(where, "vehicle_id = ?")
		args = append(args, f.VehicleID)
	}
	if f.DriverID != 0 {
		where = append(where, "driver_id = ?")
		args = append(args, f.DriverID)
	}
	if f.RouteID != 0 {
		where = append(where, "route_id = ?")
		args = append(args, f.RouteID)
	}

	query := `SELECT ` + departureColumns + ` FROM departures`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.Ascending {
		query += ` ORDER BY scheduled_at ASC, id ASC`
	} else {
		query += ` ORDER BY scheduled_at DESC, id ASC`
	}
	return query, args
}

func (r DepartureRepo) List(ctx context.Context, f DepartureFilter) ([]models.Departure, error) {
	query, args := buildDepartureQuery(f)
	rows, err := pool(r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Departure{}
	for rows.Next() {
		d, err := scanDeparture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Create serialises on a named lock per vehicle and day; the unique key on
// (vehicle_id, active_day) backs it up.
func (r DepartureRepo) Create(ctx context.Context, d models.Departure) (models.Departure, error) {
	day := d.Day()
	lockKey := fmt.Sprintf("departure:%d:%s", d.VehicleID, day)
	taken := domain.ValidationError{Field: "vehicle", Msg: "vehicle already has a departure that day"}

	err := intdb.WithTxRetry(ctx, pool(r.DB), func(tx *sql.Tx) error {
		if err := intdb.AcquireNamedLock(ctx, tx, lockKey, departureLockTimeout); err != nil {
			return err
		}
		defer intdb.ReleaseNamedLock(ctx, tx, lockKey)

		var n int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM departures
			WHERE vehicle_id = ? AND status <> 'cancelled' AND DATE(scheduled_at) = ?
		`, d.VehicleID, day).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return taken
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO departures (route_id, vehicle_id, driver_id, scheduled_at, status)
			VALUES (?, ?, ?, ?, ?)
		`, d.RouteID, d.VehicleID, d.DriverID, d.ScheduledAt, d.Status)
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				taken.Err = err
				return taken
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		d.ID = domain.ID(id)
		return nil
	})
	if err != nil {
		return d, err
	}
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	return d, nil
}

func (r DepartureRepo) UpdateStatus(ctx context.Context, id domain.ID, status models.DepartureStatus) error {
	res, err := pool(r.DB).ExecContext(ctx, `UPDATE departures SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if err := affected(res, "departure"); err != nil {
		_, err = r.GetByID(ctx, id)
		return err
	}
	return nil
}

func (r DepartureRepo) ExistsActiveForVehicleDay(ctx context.Context, vehicleID domain.ID, day time.Time) (bool, error) {
	var n int
	err := pool(r.DB).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM departures
		WHERE vehicle_id = ? AND status <> 'cancelled' AND DATE(scheduled_at) = ?
	`, vehicleID, models.DayOf(day)).Scan(&n)
	return n > 0, err
}

func (r DepartureRepo) CountByRoute(ctx context.Context, routeID domain.ID) (int, error) {
	var n int
	err := pool(r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM departures WHERE route_id = ?`, routeID).Scan(&n)
	return n, err
}

func (r DepartureRepo) CountActiveByVehicle(ctx context.Context, vehicleID domain.ID) (int, error) {
	var n int
	err := pool(r.DB).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM departures WHERE vehicle_id = ? AND status <> 'cancelled'
	`, vehicleID).Scan(&n)
	return n, err
}
