package repository

import (
	"context"
	"database/sql"

	"github.com/fleetsync/server/internal/models"
)

// MaintenanceLogRepository implements MaintenanceLogRepo for PostgreSQL/SQLite
type MaintenanceLogRepository struct {
	db *sql.DB
}

// NewMaintenanceLogRepository creates a new MaintenanceLogRepository
func NewMaintenanceLogRepository(db *sql.DB) *MaintenanceLogRepository {
	return &MaintenanceLogRepository{db: db}
}

// Add inserts the log entry and fills in its assigned ID.
func (r *MaintenanceLogRepository) Add(ctx context.Context, log *models.MaintenanceLog) error {
	query := `INSERT INTO maintenance_logs
			  (vehicle_id, task_name, performed_at_mileage, performed_at_hours, performed_date, cost, notes)
			  VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		log.VehicleID, log.TaskName, log.PerformedAtMileage, log.PerformedAtHours,
		log.PerformedDate, log.Cost, log.Notes,
	).Scan(&log.ID)
}

func (r *MaintenanceLogRepository) GetByVehicle(ctx context.Context, vehicleID int64) ([]*models.MaintenanceLog, error) {
	query := `SELECT id, vehicle_id, task_name, performed_at_mileage, performed_at_hours,
			  performed_date, cost, COALESCE(notes, '')
			  FROM maintenance_logs WHERE vehicle_id = $1 ORDER BY performed_date DESC`

	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.MaintenanceLog
	for rows.Next() {
		var l models.MaintenanceLog
		if err := rows.Scan(&l.ID, &l.VehicleID, &l.TaskName, &l.PerformedAtMileage,
			&l.PerformedAtHours, &l.PerformedDate, &l.Cost, &l.Notes); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
