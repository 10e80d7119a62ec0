package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsync/server/internal/models"
)

func TestEvaluator(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	evaluator := NewEvaluator(24 * time.Hour)

	schedule := func() *models.MaintenanceSchedule {
		return &models.MaintenanceSchedule{
			ID:                 1,
			VehicleID:          1,
			TaskName:           "Oil Change",
			TrackingType:       models.TrackMiles,
			IntervalValue:      5000,
			AlertThresholds:    "500,250,100",
			LastPerformedValue: 5000,
			IsActive:           true,
		}
	}
	vehicle := func(mileage float64) *models.Vehicle {
		return &models.Vehicle{ID: 1, GeotabID: "b1", Name: "Truck 1", CurrentMileage: mileage}
	}

	t.Run("fires when remaining crosses the largest threshold", func(t *testing.T) {
		s := schedule()
		s.LastPerformedValue = 5000
		s.IntervalValue = 5000
		// due at 10000, current 9600, remaining 400

		d, err := evaluator.Evaluate(s, vehicle(9600), now)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.True(t, d.Fire)
		assert.Equal(t, 10000.0, d.Due)
		assert.Equal(t, 400.0, d.Remaining)
		assert.Equal(t, 500.0, d.Threshold)
		assert.Equal(t, "miles", d.Unit)
	})

	t.Run("reports the smallest crossed threshold", func(t *testing.T) {
		d, err := evaluator.Evaluate(schedule(), vehicle(9920), now)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.True(t, d.Fire)
		assert.Equal(t, 100.0, d.Threshold)
	})

	t.Run("no decision above every threshold", func(t *testing.T) {
		d, err := evaluator.Evaluate(schedule(), vehicle(9000), now)
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("overdue schedules still fire", func(t *testing.T) {
		d, err := evaluator.Evaluate(schedule(), vehicle(10500), now)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.True(t, d.Fire)
		assert.Equal(t, -500.0, d.Remaining)
	})

	t.Run("suppressed inside the cooldown window", func(t *testing.T) {
		s := schedule()
		alerted := now.Add(-2 * time.Hour)
		s.LastAlertedAt = &alerted

		d, err := evaluator.Evaluate(s, vehicle(9600), now)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.False(t, d.Fire)
		assert.True(t, d.Suppressed)
	})

	t.Run("fires again after the cooldown expires", func(t *testing.T) {
		s := schedule()
		alerted := now.Add(-25 * time.Hour)
		s.LastAlertedAt = &alerted

		d, err := evaluator.Evaluate(s, vehicle(9600), now)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.True(t, d.Fire)
		assert.False(t, d.Suppressed)
	})

	t.Run("inactive schedules are skipped", func(t *testing.T) {
		s := schedule()
		s.IsActive = false

		d, err := evaluator.Evaluate(s, vehicle(9600), now)
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("calendar tracking is skipped", func(t *testing.T) {
		s := schedule()
		s.TrackingType = models.TrackTime

		d, err := evaluator.Evaluate(s, vehicle(9600), now)
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("hour tracked schedules read engine hours", func(t *testing.T) {
		s := schedule()
		s.TaskName = "Hydraulic Service"
		s.TrackingType = models.TrackHours
		s.IntervalValue = 250
		s.LastPerformedValue = 1000
		s.AlertThresholds = "50,10"

		v := vehicle(99999)
		v.CurrentHours = 1210

		d, err := evaluator.Evaluate(s, v, now)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.True(t, d.Fire)
		assert.Equal(t, 40.0, d.Remaining)
		assert.Equal(t, 50.0, d.Threshold)
		assert.Equal(t, "hours", d.Unit)
	})

	t.Run("invalid threshold list is an error", func(t *testing.T) {
		s := schedule()
		s.AlertThresholds = "500,abc"

		_, err := evaluator.Evaluate(s, vehicle(9600), now)
		assert.ErrorIs(t, err, models.ErrInvalidThreshold)
	})
}
