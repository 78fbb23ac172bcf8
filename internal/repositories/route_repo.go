package repositories

import (
	"context"
	"database/sql"
	"time"

	intdb "transporte/internal/db"
	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

type RouteRepo struct {
	DB *sql.DB
}

const routeColumns = `id, name, origin, destination, distance_km, estimated_minutes, fare_cents, per_kg_cents, active`

func scanRoute(s rowScanner) (models.Route, error) {
	var (
		r       models.Route
		minutes int
	)
	err := s.Scan(&r.ID, &r.Name, &r.Origin, &r.Destination, &r.DistanceKm, &minutes, &r.FarePerSeat, &r.PerKgRate, &r.Active)
	r.EstimatedDuration = time.Duration(minutes) * time.Minute
	return r, err
}

func (r RouteRepo) List(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := pool(r.DB).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	return out, rows.Err()
}

func (r RouteRepo) GetByID(ctx context.Context, id domain.ID) (models.Route, error) {
	row := pool(r.DB).QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ? LIMIT 1`, id)
	route, err := scanRoute(row)
	if err != nil {
		return models.Route{}, notFound(err, "route")
	}
	return route, nil
}

func (r RouteRepo) Create(ctx context.Context, route models.Route) (models.Route, error) {
	res, err := pool(r.DB).ExecContext(ctx, `
		INSERT INTO routes (name, origin, destination, distance_km, estimated_minutes, fare_cents, per_kg_cents, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, route.Name, route.Origin, route.Destination, route.DistanceKm, route.EstimatedMinutes(), route.FarePerSeat, route.PerKgRate, route.Active)
	if err != nil {
		return route, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return route, err
	}
	route.ID = domain.ID(id)
	return route, nil
}

func (r RouteRepo) Update(ctx context.Context, route models.Route) (models.Route, error) {
	res, err := pool(r.DB).ExecContext(ctx, `
		UPDATE routes
		SET name = ?, origin = ?, destination = ?, distance_km = ?, estimated_minutes = ?,
		    fare_cents = ?, per_kg_cents = ?, active = ?
		WHERE id = ?
	`, route.Name, route.Origin, route.Destination, route.DistanceKm, route.EstimatedMinutes(), route.FarePerSeat, route.PerKgRate, route.Active, route.ID)
	if err != nil {
		return route, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return route, err
	}
	if n == 0 {
		// MySQL reports 0 for an unchanged row, so confirm it exists.
		if _, err := r.GetByID(ctx, route.ID); err != nil {
			return route, err
		}
	}
	return route, nil
}

func (r RouteRepo) Delete(ctx context.Context, id domain.ID) error {
	res, err := pool(r.DB).ExecContext(ctx, `DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		if intdb.IsForeignKeyViolation(err) {
			return domain.ConflictError{Resource: "route", Msg: "route has departures", Err: err}
		}
		return err
	}
	return affected(res, "route")
}
