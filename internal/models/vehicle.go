package models

import (
	"strings"
	"time"
)

// Vehicle mirrors one enrolled telematics device. Identity fields come
// from the provider; usage counters are overwritten by the sync pipeline.
type Vehicle struct {
	ID             int64     `json:"id"`
	GeotabID       string    `json:"geotabId"`
	Name           string    `json:"name"`
	VIN            string    `json:"vin,omitempty"`
	CurrentMileage float64   `json:"currentMileage"`
	CurrentHours   float64   `json:"currentHours"`
	LastSync       time.Time `json:"lastSync"`
}

// NewVehicle creates a vehicle for a newly discovered device. Usage
// counters start at zero until the first reading arrives.
func NewVehicle(geotabID, name, vin string) (*Vehicle, error) {
	if strings.TrimSpace(geotabID) == "" {
		return nil, ErrEmptyGeotabID
	}
	if strings.TrimSpace(name) == "" {
		name = "Unknown"
	}

	return &Vehicle{
		GeotabID: geotabID,
		Name:     name,
		VIN:      vin,
		LastSync: time.Now().UTC(),
	}, nil
}

// Errors
type VehicleError struct {
	Message string
}

func (e VehicleError) Error() string {
	return e.Message
}

var (
	ErrEmptyGeotabID   = VehicleError{"geotab device id cannot be empty"}
	ErrVehicleNotFound = VehicleError{"vehicle not found"}
)
