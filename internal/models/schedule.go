package models

import (
	"strconv"
	"strings"
	"time"
)

// TrackingType is the usage dimension a schedule is measured against.
type TrackingType string

const (
	TrackMiles TrackingType = "miles"
	TrackHours TrackingType = "hours"
	TrackTime  TrackingType = "time"
)

// MaintenanceSchedule defines a recurring service task for one vehicle.
// AlertThresholds is a comma-separated list of remaining-usage trip
// wires, e.g. "500,250,100". LastAlertedAt is nil until the first alert
// is dispatched.
type MaintenanceSchedule struct {
	ID                 int64        `json:"id"`
	VehicleID          int64        `json:"vehicleId"`
	TaskName           string       `json:"taskName"`
	TrackingType       TrackingType `json:"trackingType"`
	IntervalValue      float64      `json:"intervalValue"`
	AlertThresholds    string       `json:"alertThresholds"`
	LastPerformedValue float64      `json:"lastPerformedValue"`
	LastPerformedDate  time.Time    `json:"lastPerformedDate"`
	IsActive           bool         `json:"isActive"`
	LastAlertedAt      *time.Time   `json:"lastAlertedAt,omitempty"`
}

// Validate checks the schedule invariants.
func (s *MaintenanceSchedule) Validate() error {
	if strings.TrimSpace(s.TaskName) == "" {
		return ErrEmptyTaskName
	}
	switch s.TrackingType {
	case TrackMiles, TrackHours, TrackTime:
	default:
		return ErrUnknownTrackingType
	}
	if s.IntervalValue <= 0 {
		return ErrNonPositiveInterval
	}
	if _, err := ParseThresholds(s.AlertThresholds); err != nil {
		return err
	}
	return nil
}

// ParseThresholds parses the comma-separated threshold list. Blank
// entries are skipped; negative or non-numeric entries are rejected.
func ParseThresholds(raw string) ([]float64, error) {
	var thresholds []float64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, ErrInvalidThreshold
		}
		if v < 0 {
			return nil, ErrNegativeThreshold
		}
		thresholds = append(thresholds, v)
	}
	return thresholds, nil
}

// Errors
type ScheduleError struct {
	Message string
}

func (e ScheduleError) Error() string {
	return e.Message
}

var (
	ErrEmptyTaskName       = ScheduleError{"task name cannot be empty"}
	ErrUnknownTrackingType = ScheduleError{"tracking type must be miles, hours, or time"}
	ErrNonPositiveInterval = ScheduleError{"interval value must be positive"}
	ErrInvalidThreshold    = ScheduleError{"alert thresholds must be numeric"}
	ErrNegativeThreshold   = ScheduleError{"alert thresholds cannot be negative"}
)
