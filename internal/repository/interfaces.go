package repository

import (
	"context"
	"time"

	"github.com/fleetsync/server/internal/models"
)

// VehicleRepo defines the interface for vehicle persistence operations
type VehicleRepo interface {
	GetByID(ctx context.Context, id int64) (*models.Vehicle, error)
	GetByGeotabID(ctx context.Context, geotabID string) (*models.Vehicle, error)
	GetAll(ctx context.Context) ([]*models.Vehicle, error)
	Add(ctx context.Context, vehicle *models.Vehicle) error
	UpdateIdentity(ctx context.Context, id int64, name, vin string, lastSync time.Time) error
	UpdateUsage(ctx context.Context, id int64, mileage, hours float64, lastSync time.Time) error
}

// ScheduleRepo defines the interface for maintenance schedule persistence
type ScheduleRepo interface {
	GetByID(ctx context.Context, id int64) (*models.MaintenanceSchedule, error)
	GetActiveByVehicle(ctx context.Context, vehicleID int64) ([]*models.MaintenanceSchedule, error)
	Add(ctx context.Context, schedule *models.MaintenanceSchedule) error
	MarkAlerted(ctx context.Context, id int64, at time.Time) error
	AdvanceLastPerformed(ctx context.Context, id int64, value float64, date time.Time) error
}

// NotificationRepo defines the interface for in-app notification persistence
type NotificationRepo interface {
	Add(ctx context.Context, notification *models.Notification) error
	GetRecent(ctx context.Context, limit int) ([]*models.Notification, error)
	GetCount(ctx context.Context) (int, error)
}

// MaintenanceLogRepo defines the interface for service log persistence
type MaintenanceLogRepo interface {
	Add(ctx context.Context, log *models.MaintenanceLog) error
	GetByVehicle(ctx context.Context, vehicleID int64) ([]*models.MaintenanceLog, error)
}
