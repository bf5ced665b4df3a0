package postgresql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id SERIAL PRIMARY KEY,
		email VARCHAR(120) NOT NULL UNIQUE,
		password_hash VARCHAR(200) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email VARCHAR(120) NOT NULL UNIQUE,
		password_hash VARCHAR(200) NOT NULL,
		full_name VARCHAR(100) NOT NULL,
		address TEXT NOT NULL,
		pin_code VARCHAR(10) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS parking_lots (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		address TEXT NOT NULL,
		pin_code VARCHAR(10) NOT NULL,
		price_per_hour DOUBLE PRECISION NOT NULL,
		total_spots INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS parking_spots (
		id SERIAL PRIMARY KEY,
		lot_id INTEGER NOT NULL REFERENCES parking_lots(id),
		status VARCHAR(10) NOT NULL DEFAULT 'available',
		customer_id VARCHAR(20),
		vehicle_number VARCHAR(20),
		entry_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_parking_spots_lot_id ON parking_spots(lot_id)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id SERIAL PRIMARY KEY,
		spot_id INTEGER NOT NULL REFERENCES parking_spots(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		vehicle_number VARCHAR(20) NOT NULL,
		parking_timestamp TIMESTAMPTZ NOT NULL,
		leaving_timestamp TIMESTAMPTZ,
		cost_per_hour DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_spot_id ON reservations(spot_id)`,
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
