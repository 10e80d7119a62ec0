package services

import (
	"context"
	"strings"

	"github.com/fleetsync/server/internal/models"
	"github.com/fleetsync/server/internal/observability"
	"github.com/fleetsync/server/internal/repository"
)

// LogService records completed maintenance work and resets the matching
// schedules so the next interval counts from the recorded usage.
type LogService struct {
	logs      repository.MaintenanceLogRepo
	schedules repository.ScheduleRepo
	vehicles  repository.VehicleRepo
	logger    *observability.Logger
}

func NewLogService(logs repository.MaintenanceLogRepo, schedules repository.ScheduleRepo, vehicles repository.VehicleRepo, logger *observability.Logger) *LogService {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &LogService{logs: logs, schedules: schedules, vehicles: vehicles, logger: logger}
}

// RecordService persists a maintenance log entry and advances any active
// schedule on the vehicle whose task name matches, case-insensitively.
// Mileage-tracked schedules reset from the recorded mileage, hour-tracked
// ones from the recorded engine hours.
func (s *LogService) RecordService(ctx context.Context, vehicleID int64, taskName string, atMileage, atHours, cost float64, notes string) (*models.MaintenanceLog, error) {
	ctx, span := observability.StartServiceSpan(ctx, "logs", "RecordService")
	defer span.End()

	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if vehicle == nil {
		return nil, models.ErrVehicleNotFound
	}

	entry, err := models.NewMaintenanceLog(vehicleID, taskName, atMileage, atHours, cost, notes)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if err := s.logs.Add(ctx, entry); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	schedules, err := s.schedules.GetActiveByVehicle(ctx, vehicleID)
	if err != nil {
		observability.RecordError(span, err)
		return entry, err
	}
	for _, schedule := range schedules {
		if !strings.EqualFold(schedule.TaskName, taskName) {
			continue
		}
		value := atMileage
		if schedule.TrackingType == models.TrackHours {
			value = atHours
		}
		if err := s.schedules.AdvanceLastPerformed(ctx, schedule.ID, value, entry.PerformedDate); err != nil {
			s.logger.WithField("schedule_id", schedule.ID).Errorf("Failed to advance schedule: %v", err)
			continue
		}
		s.logger.WithFields(map[string]interface{}{
			"schedule_id": schedule.ID,
			"task":        schedule.TaskName,
		}).Info("Schedule reset after recorded service")
	}

	observability.SetSuccess(span)
	return entry, nil
}
