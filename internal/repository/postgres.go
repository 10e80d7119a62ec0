package repository

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// NewPostgresDB creates and initializes a PostgreSQL database connection
func NewPostgresDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createPostgresTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id BIGSERIAL PRIMARY KEY,
		geotab_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		vin TEXT,
		current_mileage DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_sync TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_vehicles_geotab_id ON vehicles(geotab_id);

	CREATE TABLE IF NOT EXISTS maintenance_schedules (
		id BIGSERIAL PRIMARY KEY,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		task_name TEXT NOT NULL,
		tracking_type TEXT NOT NULL,
		interval_value DOUBLE PRECISION NOT NULL,
		alert_thresholds TEXT NOT NULL DEFAULT '',
		last_performed_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_performed_date TIMESTAMP NOT NULL DEFAULT NOW(),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_alerted_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_vehicle_id ON maintenance_schedules(vehicle_id);

	CREATE TABLE IF NOT EXISTS maintenance_logs (
		id BIGSERIAL PRIMARY KEY,
		vehicle_id BIGINT NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		task_name TEXT NOT NULL,
		performed_at_mileage DOUBLE PRECISION NOT NULL DEFAULT 0,
		performed_at_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		performed_date TIMESTAMP NOT NULL DEFAULT NOW(),
		cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_logs_vehicle_id ON maintenance_logs(vehicle_id);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at);
	`

	_, err := db.Exec(schema)
	return err
}
