package services

import (
	"time"

	"github.com/fleetsync/server/internal/models"
)

// Decision is the outcome of evaluating one schedule against the current
// usage of its vehicle.
type Decision struct {
	Fire       bool
	Suppressed bool
	Vehicle    *models.Vehicle
	Schedule   *models.MaintenanceSchedule
	TaskName   string
	Current    float64
	Due        float64
	Remaining  float64
	Threshold  float64
	Unit       string
}

// Evaluator decides whether a maintenance schedule is close enough to
// due to warrant an alert, honoring the per-schedule cooldown.
type Evaluator struct {
	cooldown time.Duration
}

// NewEvaluator creates an Evaluator with the given alert cooldown. A
// non-positive cooldown falls back to 24 hours.
func NewEvaluator(cooldown time.Duration) *Evaluator {
	if cooldown <= 0 {
		cooldown = 24 * time.Hour
	}
	return &Evaluator{cooldown: cooldown}
}

// Evaluate computes the remaining distance or hours for one schedule and
// decides whether to fire. It returns nil when the schedule does not
// apply: inactive, calendar-based tracking, or no threshold crossed.
// Crossing with an active cooldown returns a suppressed decision so the
// caller can account for it without dispatching.
func (e *Evaluator) Evaluate(schedule *models.MaintenanceSchedule, vehicle *models.Vehicle, now time.Time) (*Decision, error) {
	if !schedule.IsActive {
		return nil, nil
	}

	var current float64
	var unit string
	switch schedule.TrackingType {
	case models.TrackMiles:
		current = vehicle.CurrentMileage
		unit = "miles"
	case models.TrackHours:
		current = vehicle.CurrentHours
		unit = "hours"
	case models.TrackTime:
		// Calendar-based schedules are stored but not alerted on.
		return nil, nil
	default:
		return nil, models.ErrUnknownTrackingType
	}

	thresholds, err := models.ParseThresholds(schedule.AlertThresholds)
	if err != nil {
		return nil, err
	}

	due := schedule.LastPerformedValue + schedule.IntervalValue
	remaining := due - current

	// The smallest crossed threshold describes urgency best.
	crossed := -1.0
	for _, t := range thresholds {
		if remaining <= t && (crossed < 0 || t < crossed) {
			crossed = t
		}
	}
	if crossed < 0 {
		return nil, nil
	}

	decision := &Decision{
		Vehicle:   vehicle,
		Schedule:  schedule,
		TaskName:  schedule.TaskName,
		Current:   current,
		Due:       due,
		Remaining: remaining,
		Threshold: crossed,
		Unit:      unit,
	}

	if schedule.LastAlertedAt != nil && now.Sub(*schedule.LastAlertedAt) < e.cooldown {
		decision.Suppressed = true
		return decision, nil
	}

	decision.Fire = true
	return decision, nil
}
