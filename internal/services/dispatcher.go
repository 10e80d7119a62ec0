package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fleetsync/server/internal/livestate"
	"github.com/fleetsync/server/internal/models"
	"github.com/fleetsync/server/internal/observability"
	"github.com/fleetsync/server/internal/repository"
)

// Mailer abstracts email delivery so dispatch logic can be tested
// without a live SMTP server. *SMTPService satisfies it.
type Mailer interface {
	Send(subject, body string) error
	Configured() bool
}

// DispatchService turns firing decisions into delivered alerts: an email
// attempt, a persisted in-app notification, and the cooldown stamp.
type DispatchService struct {
	mailer        Mailer
	notifications repository.NotificationRepo
	schedules     repository.ScheduleRepo
	cache         *livestate.Cache
	logger        *observability.Logger
	metrics       *observability.SyncMetrics
}

func NewDispatchService(mailer Mailer, notifications repository.NotificationRepo, schedules repository.ScheduleRepo, cache *livestate.Cache, logger *observability.Logger, metrics *observability.SyncMetrics) *DispatchService {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &DispatchService{
		mailer:        mailer,
		notifications: notifications,
		schedules:     schedules,
		cache:         cache,
		logger:        logger,
		metrics:       metrics,
	}
}

// Dispatch delivers one firing decision. Email delivery is best effort:
// a send failure is logged but the in-app notification is still
// persisted and the cooldown stamp still advances, so a broken mail
// relay cannot cause alert storms.
func (s *DispatchService) Dispatch(ctx context.Context, d *Decision) error {
	ctx, span := observability.StartServiceSpan(ctx, "dispatch", "Dispatch")
	defer span.End()

	if err := s.mailer.Send(alertSubject(d), alertBody(d)); err != nil {
		s.metrics.RecordDispatchFailure(ctx)
		s.logger.WithFields(map[string]interface{}{
			"vehicle": d.Vehicle.Name,
			"task":    d.TaskName,
		}).Errorf("Alert email failed: %v", err)
	}

	// The cooldown stamp follows the dispatch attempt, not its outcome.
	// A broken mail relay or store must not produce an alert storm.
	now := time.Now().UTC()
	if err := s.schedules.MarkAlerted(ctx, d.Schedule.ID, now); err != nil {
		observability.RecordError(span, err)
		return err
	}
	d.Schedule.LastAlertedAt = &now

	notification, err := models.NewNotification(alertSubject(d), alertNotificationMessage(d), models.NotificationMaintenance)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	if err := s.notifications.Add(ctx, notification); err != nil {
		observability.RecordError(span, err)
		return err
	}

	if payload, err := json.Marshal(notification); err != nil {
		s.logger.Warnf("Alert payload marshal failed, skipping publish: %v", err)
	} else if err := s.cache.PublishAlert(ctx, payload); err != nil {
		s.logger.Warnf("Alert publish failed: %v", err)
	}

	s.metrics.RecordAlertFired(ctx)
	s.logger.WithFields(map[string]interface{}{
		"vehicle":   d.Vehicle.Name,
		"task":      d.TaskName,
		"remaining": d.Remaining,
		"unit":      d.Unit,
	}).Info("Maintenance alert dispatched")
	observability.SetSuccess(span)
	return nil
}
