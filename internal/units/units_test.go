package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetersToMiles(t *testing.T) {
	t.Run("one mile exactly", func(t *testing.T) {
		assert.Equal(t, 1.0, Round1(MetersToMiles(1609.344)))
	})

	t.Run("zero meters", func(t *testing.T) {
		assert.Equal(t, 0.0, MetersToMiles(0))
	})

	t.Run("typical odometer value", func(t *testing.T) {
		// 160,934.4 m is 100 miles
		assert.InDelta(t, 100.0, MetersToMiles(160934.4), 0.001)
	})
}

func TestSecondsToHours(t *testing.T) {
	t.Run("one hour exactly", func(t *testing.T) {
		assert.Equal(t, 1.0, SecondsToHours(3600))
	})

	t.Run("half hour", func(t *testing.T) {
		assert.Equal(t, 0.5, SecondsToHours(1800))
	})
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 1.2, Round1(1.24))
	assert.Equal(t, 1.3, Round1(1.25))
	assert.Equal(t, 1.2, Round1(1.249999))
	assert.Equal(t, -1.2, Round1(-1.24))
	assert.Equal(t, 0.0, Round1(0.04))
}
