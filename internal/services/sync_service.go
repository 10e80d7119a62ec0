package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fleetsync/server/internal/geotab"
	"github.com/fleetsync/server/internal/observability"
	"github.com/fleetsync/server/internal/repository"
)

// CycleResult summarizes one completed sync cycle.
type CycleResult struct {
	StartedAt        time.Time `json:"startedAt"`
	CompletedAt      time.Time `json:"completedAt"`
	DurationMS       int64     `json:"durationMs"`
	DevicesSeen      int       `json:"devicesSeen"`
	Reconciled       bool      `json:"reconciled"`
	VehiclesCreated  int       `json:"vehiclesCreated"`
	VehiclesUpdated  int       `json:"vehiclesUpdated"`
	VehiclesSynced   int       `json:"vehiclesSynced"`
	AlertsFired      int       `json:"alertsFired"`
	AlertsSuppressed int       `json:"alertsSuppressed"`
}

// SyncService drives the full pipeline: authenticate, reconcile the
// device list, refresh usage, evaluate schedules, dispatch alerts.
type SyncService struct {
	api        TelemetryAPI
	creds      geotab.Credentials
	reconciler *ReconcileService
	usage      *UsageService
	evaluator  *Evaluator
	dispatcher *DispatchService
	vehicles   repository.VehicleRepo
	schedules  repository.ScheduleRepo
	hub        *WebSocketHub
	logger     *observability.Logger
	metrics    *observability.SyncMetrics

	interval  time.Duration
	authRetry time.Duration

	mu      sync.RWMutex
	session *geotab.Session
	last    *CycleResult
}

func NewSyncService(
	api TelemetryAPI,
	creds geotab.Credentials,
	reconciler *ReconcileService,
	usage *UsageService,
	evaluator *Evaluator,
	dispatcher *DispatchService,
	vehicles repository.VehicleRepo,
	schedules repository.ScheduleRepo,
	hub *WebSocketHub,
	logger *observability.Logger,
	metrics *observability.SyncMetrics,
	interval, authRetry time.Duration,
) *SyncService {
	if logger == nil {
		logger = observability.GetLogger()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if authRetry <= 0 {
		authRetry = time.Minute
	}
	return &SyncService{
		api:        api,
		creds:      creds,
		reconciler: reconciler,
		usage:      usage,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		vehicles:   vehicles,
		schedules:  schedules,
		hub:        hub,
		logger:     logger,
		metrics:    metrics,
		interval:   interval,
		authRetry:  authRetry,
	}
}

// LastResult returns the most recent cycle summary, or nil before the
// first cycle completes.
func (s *SyncService) LastResult() *CycleResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Run executes sync cycles at a fixed interval until the context is
// canceled. Authentication failures are retried with a backoff rather
// than terminating the loop.
func (s *SyncService) Run(ctx context.Context) error {
	s.logger.WithField("interval", s.interval.String()).Info("Sync loop starting")
	for {
		session, err := s.ensureSession(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.metrics.RecordAuthFailure(ctx)
			s.logger.Errorf("Authentication failed, retrying in %s: %v", s.authRetry, err)
			select {
			case <-time.After(s.authRetry):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		result, err := s.runCycle(ctx, session)
		if err != nil {
			var authErr *geotab.AuthError
			if errors.As(err, &authErr) {
				// Session expired mid-cycle, force a re-auth.
				s.invalidateSession()
				s.metrics.RecordAuthFailure(ctx)
			}
			s.logger.Errorf("Sync cycle failed: %v", err)
		}
		s.finishCycle(ctx, result, err)

		select {
		case <-time.After(s.interval):
		case <-ctx.Done():
			s.logger.Info("Sync loop stopping")
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sync cycle. Unlike Run it does not retry
// authentication; a failed login is returned so batch callers can exit
// non-zero.
func (s *SyncService) RunOnce(ctx context.Context) (*CycleResult, error) {
	session, err := s.api.Authenticate(ctx, s.creds)
	if err != nil {
		s.metrics.RecordAuthFailure(ctx)
		return nil, err
	}
	s.setSession(session)

	result, err := s.runCycle(ctx, session)
	s.finishCycle(ctx, result, err)
	return result, err
}

func (s *SyncService) runCycle(ctx context.Context, session *geotab.Session) (*CycleResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "sync", "Cycle")
	defer span.End()

	result := &CycleResult{StartedAt: time.Now().UTC()}

	devices, err := s.api.ListDevices(ctx, session)
	if err != nil {
		var authErr *geotab.AuthError
		if errors.As(err, &authErr) {
			observability.RecordError(span, err)
			return result, err
		}
		// Device listing is best effort: a transient provider failure
		// skips reconciliation but known vehicles still sync.
		s.logger.Warnf("Device listing failed, skipping reconcile: %v", err)
	} else {
		result.DevicesSeen = len(devices)
		created, updated, rerr := s.reconciler.Reconcile(ctx, devices)
		if rerr != nil {
			s.logger.Errorf("Reconcile failed: %v", rerr)
		} else {
			result.Reconciled = true
			result.VehiclesCreated = created
			result.VehiclesUpdated = updated
		}
	}

	synced, err := s.usage.UpdateAll(ctx, session)
	if err != nil {
		observability.RecordError(span, err)
		return result, err
	}
	result.VehiclesSynced = synced
	s.metrics.RecordVehiclesSynced(ctx, synced)

	fired, suppressed, err := s.evaluateAll(ctx)
	result.AlertsFired = fired
	result.AlertsSuppressed = suppressed
	if err != nil {
		observability.RecordError(span, err)
		return result, err
	}

	observability.SetSuccess(span)
	return result, nil
}

// evaluateAll walks every active schedule of every vehicle. Failures on
// one schedule never block the rest.
func (s *SyncService) evaluateAll(ctx context.Context) (fired, suppressed int, err error) {
	vehicles, err := s.vehicles.GetAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	now := time.Now().UTC()
	for _, vehicle := range vehicles {
		schedules, err := s.schedules.GetActiveByVehicle(ctx, vehicle.ID)
		if err != nil {
			s.logger.WithField("vehicle", vehicle.Name).Errorf("Failed to load schedules: %v", err)
			continue
		}
		for _, schedule := range schedules {
			decision, err := s.evaluator.Evaluate(schedule, vehicle, now)
			if err != nil {
				s.logger.WithFields(map[string]interface{}{
					"vehicle": vehicle.Name,
					"task":    schedule.TaskName,
				}).Errorf("Schedule evaluation failed: %v", err)
				continue
			}
			if decision == nil {
				continue
			}
			if decision.Suppressed {
				suppressed++
				s.metrics.RecordAlertSuppressed(ctx)
				continue
			}
			if err := s.dispatcher.Dispatch(ctx, decision); err != nil {
				s.logger.WithFields(map[string]interface{}{
					"vehicle": vehicle.Name,
					"task":    schedule.TaskName,
				}).Errorf("Alert dispatch failed: %v", err)
				continue
			}
			fired++
			if s.hub != nil {
				s.hub.BroadcastToTopic(TopicAlerts, WSMessage{
					Type: WSTypeAlert,
					Payload: map[string]interface{}{
						"vehicle":   decision.Vehicle.Name,
						"task":      decision.TaskName,
						"remaining": decision.Remaining,
						"unit":      decision.Unit,
					},
				})
			}
		}
	}
	return fired, suppressed, nil
}

func (s *SyncService) finishCycle(ctx context.Context, result *CycleResult, cycleErr error) {
	if result == nil {
		return
	}
	result.CompletedAt = time.Now().UTC()
	result.DurationMS = result.CompletedAt.Sub(result.StartedAt).Milliseconds()

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	s.metrics.RecordCycle(ctx, float64(result.DurationMS), cycleErr == nil)
	if s.hub != nil {
		s.hub.BroadcastToTopic(TopicSync, WSMessage{Type: WSTypeSyncCycle, Payload: result})
	}

	s.logger.WithFields(map[string]interface{}{
		"devices":    result.DevicesSeen,
		"synced":     result.VehiclesSynced,
		"fired":      result.AlertsFired,
		"suppressed": result.AlertsSuppressed,
		"duration":   result.DurationMS,
	}).Info("Sync cycle finished")
}

func (s *SyncService) ensureSession(ctx context.Context) (*geotab.Session, error) {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session != nil {
		return session, nil
	}

	session, err := s.api.Authenticate(ctx, s.creds)
	if err != nil {
		return nil, err
	}
	s.setSession(session)
	s.logger.WithField("database", session.Database).Info("Authenticated with telemetry provider")
	return session, nil
}

func (s *SyncService) setSession(session *geotab.Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

func (s *SyncService) invalidateSession() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}
