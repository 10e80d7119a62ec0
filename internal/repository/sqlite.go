package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes a SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- Vehicles mirrored from the telemetry provider
	CREATE TABLE IF NOT EXISTS vehicles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		geotab_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		vin TEXT,
		current_mileage REAL NOT NULL DEFAULT 0,
		current_hours REAL NOT NULL DEFAULT 0,
		last_sync DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_vehicles_geotab_id ON vehicles(geotab_id);

	-- Maintenance schedules
	CREATE TABLE IF NOT EXISTS maintenance_schedules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vehicle_id INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		task_name TEXT NOT NULL,
		tracking_type TEXT NOT NULL,
		interval_value REAL NOT NULL,
		alert_thresholds TEXT NOT NULL DEFAULT '',
		last_performed_value REAL NOT NULL DEFAULT 0,
		last_performed_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_active INTEGER NOT NULL DEFAULT 1,
		last_alerted_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_vehicle_id ON maintenance_schedules(vehicle_id);

	-- Completed service records
	CREATE TABLE IF NOT EXISTS maintenance_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vehicle_id INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		task_name TEXT NOT NULL,
		performed_at_mileage REAL NOT NULL DEFAULT 0,
		performed_at_hours REAL NOT NULL DEFAULT 0,
		performed_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		cost REAL NOT NULL DEFAULT 0,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_logs_vehicle_id ON maintenance_logs(vehicle_id);

	-- In-app notifications
	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at);
	`

	_, err := db.Exec(schema)
	return err
}
