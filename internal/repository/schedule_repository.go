package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fleetsync/server/internal/models"
)

// ScheduleRepository implements ScheduleRepo for PostgreSQL/SQLite
type ScheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, vehicle_id, task_name, tracking_type, interval_value, alert_thresholds,
	last_performed_value, last_performed_date, is_active, last_alerted_at`

func scanSchedule(row interface{ Scan(...interface{}) error }) (*models.MaintenanceSchedule, error) {
	var s models.MaintenanceSchedule
	var lastAlerted sql.NullTime
	err := row.Scan(&s.ID, &s.VehicleID, &s.TaskName, &s.TrackingType, &s.IntervalValue,
		&s.AlertThresholds, &s.LastPerformedValue, &s.LastPerformedDate, &s.IsActive, &lastAlerted)
	if err != nil {
		return nil, err
	}
	if lastAlerted.Valid {
		t := lastAlerted.Time
		s.LastAlertedAt = &t
	}
	return &s, nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*models.MaintenanceSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM maintenance_schedules WHERE id = $1`

	schedule, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (r *ScheduleRepository) GetActiveByVehicle(ctx context.Context, vehicleID int64) ([]*models.MaintenanceSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM maintenance_schedules
			  WHERE vehicle_id = $1 AND is_active = true ORDER BY task_name`

	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.MaintenanceSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

// Add inserts the schedule and fills in its assigned ID.
func (r *ScheduleRepository) Add(ctx context.Context, schedule *models.MaintenanceSchedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO maintenance_schedules
			  (vehicle_id, task_name, tracking_type, interval_value, alert_thresholds,
			   last_performed_value, last_performed_date, is_active, last_alerted_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		schedule.VehicleID, schedule.TaskName, string(schedule.TrackingType),
		schedule.IntervalValue, schedule.AlertThresholds,
		schedule.LastPerformedValue, schedule.LastPerformedDate,
		schedule.IsActive, schedule.LastAlertedAt,
	).Scan(&schedule.ID)
}

// MarkAlerted stamps the cooldown timestamp after a dispatch attempt.
// Placeholders are numbered in occurrence order: go-sqlite3 binds $N
// positionally, so any other numbering misbinds the WHERE clause.
func (r *ScheduleRepository) MarkAlerted(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE maintenance_schedules SET last_alerted_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, id)
	return err
}

// AdvanceLastPerformed records that a service was completed at the given
// usage value, resetting the schedule's due point.
func (r *ScheduleRepository) AdvanceLastPerformed(ctx context.Context, id int64, value float64, date time.Time) error {
	query := `UPDATE maintenance_schedules SET last_performed_value = $1, last_performed_date = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, value, date, id)
	return err
}
