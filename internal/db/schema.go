package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Tables the service expects, in creation order.
var Tables = []string{"users", "routes", "vehicles", "departures", "seat_assignments", "parcels"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(150) NOT NULL,
		full_name VARCHAR(150) NOT NULL DEFAULT '',
		phone VARCHAR(15) NOT NULL DEFAULT '',
		email VARCHAR(150) NOT NULL DEFAULT '',
		role VARCHAR(10) NOT NULL DEFAULT 'driver',
		active TINYINT(1) NOT NULL DEFAULT 1,
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS routes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		origin VARCHAR(100) NOT NULL,
		destination VARCHAR(100) NOT NULL,
		distance_km DECIMAL(6,2) NOT NULL DEFAULT 0,
		estimated_minutes INT NOT NULL DEFAULT 0,
		fare_cents BIGINT NOT NULL,
		per_kg_cents BIGINT NOT NULL DEFAULT 0,
		active TINYINT(1) NOT NULL DEFAULT 1
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		plate VARCHAR(10) NOT NULL,
		brand VARCHAR(50) NOT NULL DEFAULT '',
		model VARCHAR(50) NOT NULL DEFAULT '',
		year INT NOT NULL DEFAULT 0,
		capacity INT UNSIGNED NOT NULL,
		driver_id BIGINT NULL,
		status VARCHAR(15) NOT NULL DEFAULT 'active',
		UNIQUE KEY uq_vehicles_plate (plate),
		CONSTRAINT fk_vehicles_driver FOREIGN KEY (driver_id) REFERENCES users(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	// active_day is NULL for cancelled rows so the unique key only binds live departures.
	`CREATE TABLE IF NOT EXISTS departures (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		route_id BIGINT NOT NULL,
		vehicle_id BIGINT NOT NULL,
		driver_id BIGINT NOT NULL,
		scheduled_at DATETIME NOT NULL,
		status VARCHAR(15) NOT NULL DEFAULT 'scheduled',
		active_day DATE AS (IF(status = 'cancelled', NULL, DATE(scheduled_at))) STORED,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_departures_vehicle_day (vehicle_id, active_day),
		KEY idx_departures_scheduled (scheduled_at),
		CONSTRAINT fk_departures_route FOREIGN KEY (route_id) REFERENCES routes(id),
		CONSTRAINT fk_departures_vehicle FOREIGN KEY (vehicle_id) REFERENCES vehicles(id),
		CONSTRAINT fk_departures_driver FOREIGN KEY (driver_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS seat_assignments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		departure_id BIGINT NOT NULL,
		seat_number INT UNSIGNED NOT NULL,
		passenger_name VARCHAR(100) NOT NULL,
		national_id VARCHAR(15) NOT NULL,
		phone VARCHAR(15) NOT NULL DEFAULT '',
		price_cents BIGINT NOT NULL DEFAULT 0,
		kind VARCHAR(20) NOT NULL DEFAULT 'sold',
		status VARCHAR(10) NOT NULL DEFAULT 'reserved',
		reserved_by BIGINT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_seat_departure_number (departure_id, seat_number),
		CONSTRAINT fk_seat_departure FOREIGN KEY (departure_id) REFERENCES departures(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS parcels (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		departure_id BIGINT NOT NULL,
		sender_name VARCHAR(100) NOT NULL,
		sender_phone VARCHAR(15) NOT NULL DEFAULT '',
		recipient_name VARCHAR(100) NOT NULL,
		recipient_phone VARCHAR(15) NOT NULL DEFAULT '',
		description VARCHAR(200) NOT NULL,
		weight_kg DECIMAL(5,2) NOT NULL,
		price_cents BIGINT NOT NULL,
		status VARCHAR(15) NOT NULL DEFAULT 'shipped',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		delivered_at DATETIME NULL,
		KEY idx_parcels_departure (departure_id),
		CONSTRAINT fk_parcel_departure FOREIGN KEY (departure_id) REFERENCES departures(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates missing tables; existing tables are left untouched.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// MissingTables lists expected tables that do not exist yet.
func MissingTables(ctx context.Context, q QueryRower) []string {
	missing := []string{}
	for _, t := range Tables {
		if !HasTable(ctx, q, t) {
			missing = append(missing, t)
		}
	}
	return missing
}
