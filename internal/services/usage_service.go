package services

import (
	"context"
	"time"

	"github.com/fleetsync/server/internal/geotab"
	"github.com/fleetsync/server/internal/livestate"
	"github.com/fleetsync/server/internal/models"
	"github.com/fleetsync/server/internal/observability"
	"github.com/fleetsync/server/internal/repository"
	"github.com/fleetsync/server/internal/units"
)

// UsageService pulls the latest odometer and engine-hour readings for
// each known vehicle and overwrites its usage counters.
type UsageService struct {
	api      TelemetryAPI
	vehicles repository.VehicleRepo
	cache    *livestate.Cache
	logger   *observability.Logger
	window   time.Duration
}

// NewUsageService creates a new UsageService. window bounds how far back
// a reading may be; it keeps stale cached provider values out while
// tolerating normal reporting latency.
func NewUsageService(api TelemetryAPI, vehicles repository.VehicleRepo, cache *livestate.Cache, logger *observability.Logger, window time.Duration) *UsageService {
	if logger == nil {
		logger = observability.GetLogger()
	}
	if window <= 0 {
		window = time.Hour
	}
	return &UsageService{
		api:      api,
		vehicles: vehicles,
		cache:    cache,
		logger:   logger,
		window:   window,
	}
}

// UpdateAll refreshes usage for every known vehicle. A failure on one
// vehicle is logged at vehicle granularity and never aborts the rest.
// Returns the number of vehicles whose record was written.
func (s *UsageService) UpdateAll(ctx context.Context, session *geotab.Session) (int, error) {
	ctx, span := observability.StartServiceSpan(ctx, "usage", "UpdateAll")
	defer span.End()

	vehicles, err := s.vehicles.GetAll(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return 0, err
	}

	synced := 0
	for _, vehicle := range vehicles {
		if err := s.UpdateVehicle(ctx, session, vehicle); err != nil {
			s.logger.WithField("vehicle", vehicle.Name).Errorf("Failed to sync vehicle: %v", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// UpdateVehicle fetches both readings for one vehicle and persists the
// result. A missing reading leaves the existing counter untouched; a
// transport failure on one signal is treated as no data for that signal.
// last_sync is always stamped to record that a sync attempt occurred.
func (s *UsageService) UpdateVehicle(ctx context.Context, session *geotab.Session, vehicle *models.Vehicle) error {
	windowStart := time.Now().UTC().Add(-s.window)

	if meters, ok := s.fetchSignal(ctx, session, vehicle, geotab.DiagnosticOdometer, windowStart); ok {
		vehicle.CurrentMileage = units.Round1(units.MetersToMiles(meters))
	}

	if seconds, ok := s.fetchEngineHours(ctx, session, vehicle, windowStart); ok {
		vehicle.CurrentHours = units.Round1(units.SecondsToHours(seconds))
	}

	vehicle.LastSync = time.Now().UTC()

	if err := s.vehicles.UpdateUsage(ctx, vehicle.ID, vehicle.CurrentMileage, vehicle.CurrentHours, vehicle.LastSync); err != nil {
		return err
	}

	if err := s.cache.PublishVehicleState(ctx, vehicle); err != nil {
		s.logger.WithField("vehicle", vehicle.Name).Warnf("Live state publish failed: %v", err)
	}
	return nil
}

func (s *UsageService) fetchSignal(ctx context.Context, session *geotab.Session, vehicle *models.Vehicle, diagnosticID string, windowStart time.Time) (float64, bool) {
	reading, err := s.api.LatestReading(ctx, session, vehicle.GeotabID, diagnosticID, windowStart)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"vehicle": vehicle.Name,
			"signal":  diagnosticID,
		}).Warnf("Reading fetch failed, treating as no data: %v", err)
		return 0, false
	}
	if reading == nil {
		return 0, false
	}
	return reading.Value, true
}

// fetchEngineHours applies the engine-hours channel policy: the primary
// diagnostic first, the fallback only when the primary window is empty.
func (s *UsageService) fetchEngineHours(ctx context.Context, session *geotab.Session, vehicle *models.Vehicle, windowStart time.Time) (float64, bool) {
	if seconds, ok := s.fetchSignal(ctx, session, vehicle, geotab.DiagnosticEngineHours, windowStart); ok {
		return seconds, true
	}
	return s.fetchSignal(ctx, session, vehicle, geotab.DiagnosticEngineHoursFallback, windowStart)
}
