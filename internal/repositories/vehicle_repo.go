package repositories

import (
	"context"
	"database/sql"

	intdb "transporte/internal/db"
	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

type VehicleRepo struct {
	DB *sql.DB
}

const vehicleColumns = `id, plate, brand, model, year, capacity, COALESCE(driver_id, 0), status`

func scanVehicle(s rowScanner) (models.Vehicle, error) {
	var v models.Vehicle
	err := s.Scan(&v.ID, &v.Plate, &v.Brand, &v.Model, &v.Year, &v.Capacity, &v.DriverID, &v.Status)
	return v, err
}

func (r VehicleRepo) List(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := pool(r.DB).QueryContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY plate`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VehicleRepo) GetByID(ctx context.Context, id domain.ID) (models.Vehicle, error) {
	v, err := scanVehicle(pool(r.DB).QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ? LIMIT 1`, id))
	if err != nil {
		return models.Vehicle{}, notFound(err, "vehicle")
	}
	return v, nil
}

func (r VehicleRepo) Create(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	res, err := pool(r.DB).ExecContext(ctx, `
		INSERT INTO vehicles (plate, brand, model, year, capacity, driver_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.Plate, v.Brand, v.Model, v.Year, v.Capacity, intdb.NullIfZero(int64(v.DriverID)), v.Status)
	if err != nil {
		return v, plateConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return v, err
	}
	v.ID = domain.ID(id)
	return v, nil
}

func (r VehicleRepo) Update(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	res, err := pool(r.DB).ExecContext(ctx, `
		UPDATE vehicles
		SET plate = ?, brand = ?, model = ?, year = ?, capacity = ?, driver_id = ?, status = ?
		WHERE id = ?
	`, v.Plate, v.Brand, v.Model, v.Year, v.Capacity, intdb.NullIfZero(int64(v.DriverID)), v.Status, v.ID)
	if err != nil {
		return v, plateConflict(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return v, err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, v.ID); err != nil {
			return v, err
		}
	}
	return v, nil
}

func (r VehicleRepo) Delete(ctx context.Context, id domain.ID) error {
	res, err := pool(r.DB).ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		if intdb.IsForeignKeyViolation(err) {
			return domain.ConflictError{Resource: "vehicle", Msg: "vehicle has departures", Err: err}
		}
		return err
	}
	return affected(res, "vehicle")
}

func plateConflict(err error) error {
	if intdb.IsDuplicateKey(err) {
		return domain.ConflictError{Resource: "vehicle", Msg: "plate already registered", Err: err}
	}
	return err
}
