package models

import (
	"strings"
	"time"
)

// MaintenanceLog records one completed service. Recording a log advances
// the matching schedule's last-performed value and date.
type MaintenanceLog struct {
	ID                 int64     `json:"id"`
	VehicleID          int64     `json:"vehicleId"`
	TaskName           string    `json:"taskName"`
	PerformedAtMileage float64   `json:"performedAtMileage"`
	PerformedAtHours   float64   `json:"performedAtHours"`
	PerformedDate      time.Time `json:"performedDate"`
	Cost               float64   `json:"cost"`
	Notes              string    `json:"notes,omitempty"`
}

// NewMaintenanceLog creates a log entry dated now.
func NewMaintenanceLog(vehicleID int64, taskName string, atMileage, atHours, cost float64, notes string) (*MaintenanceLog, error) {
	if vehicleID <= 0 {
		return nil, ErrVehicleNotFound
	}
	if strings.TrimSpace(taskName) == "" {
		return nil, ErrEmptyTaskName
	}

	return &MaintenanceLog{
		VehicleID:          vehicleID,
		TaskName:           taskName,
		PerformedAtMileage: atMileage,
		PerformedAtHours:   atHours,
		PerformedDate:      time.Now().UTC(),
		Cost:               cost,
		Notes:              notes,
	}, nil
}
