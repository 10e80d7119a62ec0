package services

import (
	"context"
	"time"

	"github.com/fleetsync/server/internal/geotab"
	"github.com/fleetsync/server/internal/models"
	"github.com/fleetsync/server/internal/observability"
	"github.com/fleetsync/server/internal/repository"
)

// ReconcileService merges the remote device list into the local vehicle
// store. It creates unseen devices, updates changed identity fields on
// known ones, and never deletes: a device missing from the remote list
// may only be temporarily unreachable.
type ReconcileService struct {
	vehicles repository.VehicleRepo
	logger   *observability.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(vehicles repository.VehicleRepo, logger *observability.Logger) *ReconcileService {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &ReconcileService{vehicles: vehicles, logger: logger}
}

// Reconcile merges the device list and reports how many vehicles were
// created and updated. Running it twice with the same input produces no
// writes on the second run. A persistence failure on one device is
// logged and does not abort the rest.
func (s *ReconcileService) Reconcile(ctx context.Context, devices []geotab.DeviceRecord) (created, updated int, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "reconciler", "Reconcile")
	defer span.End()

	locals, err := s.vehicles.GetAll(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return 0, 0, err
	}

	byGeotabID := make(map[string]*models.Vehicle, len(locals))
	for _, v := range locals {
		byGeotabID[v.GeotabID] = v
	}

	for _, device := range devices {
		existing, ok := byGeotabID[device.ID]
		if !ok {
			vehicle, err := models.NewVehicle(device.ID, device.Name, device.SerialNumber)
			if err != nil {
				s.logger.WithField("device", device.ID).Errorf("Skipping invalid device: %v", err)
				continue
			}
			if err := s.vehicles.Add(ctx, vehicle); err != nil {
				s.logger.WithField("device", device.ID).Errorf("Failed to create vehicle: %v", err)
				continue
			}
			created++
			continue
		}

		name := device.Name
		if name == "" {
			name = "Unknown"
		}

		// Only write when an identity field actually changed, so an
		// unchanged remote list causes no writes at all.
		if existing.Name == name && existing.VIN == device.SerialNumber {
			continue
		}
		if err := s.vehicles.UpdateIdentity(ctx, existing.ID, name, device.SerialNumber, time.Now().UTC()); err != nil {
			s.logger.WithField("device", device.ID).Errorf("Failed to update vehicle identity: %v", err)
			continue
		}
		updated++
	}

	if created > 0 || updated > 0 {
		s.logger.Infof("Reconciled %d devices: %d new, %d updated", len(devices), created, updated)
	}
	return created, updated, nil
}
