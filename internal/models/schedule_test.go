package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThresholds(t *testing.T) {
	t.Run("parses comma-separated list", func(t *testing.T) {
		got, err := ParseThresholds("500,250,100")
		require.NoError(t, err)
		assert.Equal(t, []float64{500, 250, 100}, got)
	})

	t.Run("trims whitespace and skips blanks", func(t *testing.T) {
		got, err := ParseThresholds(" 500 , , 100 ")
		require.NoError(t, err)
		assert.Equal(t, []float64{500, 100}, got)
	})

	t.Run("empty string yields no thresholds", func(t *testing.T) {
		got, err := ParseThresholds("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects non-numeric entries", func(t *testing.T) {
		_, err := ParseThresholds("500,soon")
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("rejects negative entries", func(t *testing.T) {
		_, err := ParseThresholds("500,-100")
		assert.ErrorIs(t, err, ErrNegativeThreshold)
	})
}

func TestScheduleValidate(t *testing.T) {
	valid := func() *MaintenanceSchedule {
		return &MaintenanceSchedule{
			VehicleID:         1,
			TaskName:          "Oil Change",
			TrackingType:      TrackMiles,
			IntervalValue:     5000,
			AlertThresholds:   "500,250,100",
			LastPerformedDate: time.Now().UTC(),
			IsActive:          true,
		}
	}

	t.Run("accepts a valid schedule", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects zero interval", func(t *testing.T) {
		s := valid()
		s.IntervalValue = 0
		assert.ErrorIs(t, s.Validate(), ErrNonPositiveInterval)
	})

	t.Run("rejects unknown tracking type", func(t *testing.T) {
		s := valid()
		s.TrackingType = "fortnights"
		assert.ErrorIs(t, s.Validate(), ErrUnknownTrackingType)
	})

	t.Run("rejects empty task name", func(t *testing.T) {
		s := valid()
		s.TaskName = "  "
		assert.ErrorIs(t, s.Validate(), ErrEmptyTaskName)
	})
}
