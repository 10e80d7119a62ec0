package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/fleetsync/server/internal/models"
)

// VehicleRepository implements VehicleRepo for PostgreSQL/SQLite
type VehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository creates a new VehicleRepository
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `id, geotab_id, name, COALESCE(vin, ''), current_mileage, current_hours, last_sync`

func scanVehicle(row interface{ Scan(...interface{}) error }) (*models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.GeotabID, &v.Name, &v.VIN, &v.CurrentMileage, &v.CurrentHours, &v.LastSync)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *VehicleRepository) GetByGeotabID(ctx context.Context, geotabID string) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE geotab_id = $1`

	vehicle, err := scanVehicle(r.db.QueryRowContext(ctx, query, geotabID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *VehicleRepository) GetAll(ctx context.Context) ([]*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

// Add inserts the vehicle and fills in its assigned ID.
func (r *VehicleRepository) Add(ctx context.Context, vehicle *models.Vehicle) error {
	query := `INSERT INTO vehicles (geotab_id, name, vin, current_mileage, current_hours, last_sync)
			  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		vehicle.GeotabID, vehicle.Name, vehicle.VIN,
		vehicle.CurrentMileage, vehicle.CurrentHours, vehicle.LastSync,
	).Scan(&vehicle.ID)
}

// Placeholders are numbered in occurrence order: go-sqlite3 binds $N
// positionally, so any other numbering misbinds the WHERE clause.
func (r *VehicleRepository) UpdateIdentity(ctx context.Context, id int64, name, vin string, lastSync time.Time) error {
	query := `UPDATE vehicles SET name = $1, vin = $2, last_sync = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, name, vin, lastSync, id)
	return err
}

func (r *VehicleRepository) UpdateUsage(ctx context.Context, id int64, mileage, hours float64, lastSync time.Time) error {
	query := `UPDATE vehicles SET current_mileage = $1, current_hours = $2, last_sync = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, mileage, hours, lastSync, id)
	return err
}
