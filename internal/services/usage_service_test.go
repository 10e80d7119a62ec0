package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsync/server/internal/geotab"
)

func TestUsageService(t *testing.T) {
	ctx := context.Background()
	session := &geotab.Session{SessionID: "s", Database: "db"}

	t.Run("converts and rounds readings before persisting", func(t *testing.T) {
		repos := setupRepos(t)
		vehicle := addVehicle(t, repos, "b1", "Truck 1")

		api := &fakeAPI{
			latestReading: func(deviceID, diagnosticID string) (*geotab.Reading, error) {
				switch diagnosticID {
				case geotab.DiagnosticOdometer:
					// 1609.344 meters is exactly one mile.
					return &geotab.Reading{Value: 1609.344}, nil
				case geotab.DiagnosticEngineHours:
					return &geotab.Reading{Value: 3600}, nil
				}
				return nil, nil
			},
		}
		svc := NewUsageService(api, repos.vehicles, nil, nil, 0)

		require.NoError(t, svc.UpdateVehicle(ctx, session, vehicle))

		stored, err := repos.vehicles.GetByID(ctx, vehicle.ID)
		require.NoError(t, err)
		assert.Equal(t, 1.0, stored.CurrentMileage)
		assert.Equal(t, 1.0, stored.CurrentHours)
		assert.False(t, stored.LastSync.IsZero())
	})

	t.Run("missing reading leaves the counter untouched", func(t *testing.T) {
		repos := setupRepos(t)
		vehicle := addVehicle(t, repos, "b1", "Truck 1")
		require.NoError(t, repos.vehicles.UpdateUsage(ctx, vehicle.ID, 5000, 120, vehicle.LastSync))
		vehicle.CurrentMileage = 5000
		vehicle.CurrentHours = 120

		api := &fakeAPI{} // empty window for every signal
		svc := NewUsageService(api, repos.vehicles, nil, nil, 0)

		require.NoError(t, svc.UpdateVehicle(ctx, session, vehicle))

		stored, err := repos.vehicles.GetByID(ctx, vehicle.ID)
		require.NoError(t, err)
		assert.Equal(t, 5000.0, stored.CurrentMileage)
		assert.Equal(t, 120.0, stored.CurrentHours)
	})

	t.Run("falls back to the secondary engine hours channel", func(t *testing.T) {
		repos := setupRepos(t)
		vehicle := addVehicle(t, repos, "b1", "Truck 1")

		api := &fakeAPI{
			latestReading: func(deviceID, diagnosticID string) (*geotab.Reading, error) {
				if diagnosticID == geotab.DiagnosticEngineHoursFallback {
					return &geotab.Reading{Value: 7200}, nil
				}
				return nil, nil
			},
		}
		svc := NewUsageService(api, repos.vehicles, nil, nil, 0)

		require.NoError(t, svc.UpdateVehicle(ctx, session, vehicle))

		stored, err := repos.vehicles.GetByID(ctx, vehicle.ID)
		require.NoError(t, err)
		assert.Equal(t, 2.0, stored.CurrentHours)
	})

	t.Run("transport failure on one signal is treated as no data", func(t *testing.T) {
		repos := setupRepos(t)
		vehicle := addVehicle(t, repos, "b1", "Truck 1")

		api := &fakeAPI{
			latestReading: func(deviceID, diagnosticID string) (*geotab.Reading, error) {
				if diagnosticID == geotab.DiagnosticOdometer {
					return &geotab.Reading{Value: 160934.4}, nil
				}
				return nil, &geotab.TransportError{Op: "Get", Err: errors.New("connection reset")}
			},
		}
		svc := NewUsageService(api, repos.vehicles, nil, nil, 0)

		require.NoError(t, svc.UpdateVehicle(ctx, session, vehicle))

		stored, err := repos.vehicles.GetByID(ctx, vehicle.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, stored.CurrentMileage)
		assert.Equal(t, 0.0, stored.CurrentHours)
	})

	t.Run("failure on one vehicle does not block the rest", func(t *testing.T) {
		repos := setupRepos(t)
		addVehicle(t, repos, "a", "Truck A")
		addVehicle(t, repos, "b", "Truck B")
		addVehicle(t, repos, "c", "Truck C")

		api := &fakeAPI{
			latestReading: func(deviceID, diagnosticID string) (*geotab.Reading, error) {
				if deviceID == "b" {
					return nil, &geotab.TransportError{Op: "Get", Err: errors.New("boom")}
				}
				if diagnosticID == geotab.DiagnosticOdometer {
					return &geotab.Reading{Value: 1609.344}, nil
				}
				return nil, nil
			},
		}
		svc := NewUsageService(api, repos.vehicles, nil, nil, 0)

		synced, err := svc.UpdateAll(ctx, session)
		require.NoError(t, err)
		// Vehicle B's failures degrade to no-data, so its record still
		// gets a last_sync stamp.
		assert.Equal(t, 3, synced)

		for _, id := range []string{"a", "c"} {
			stored, err := repos.vehicles.GetByGeotabID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, 1.0, stored.CurrentMileage, "vehicle %s", id)
		}
		b, err := repos.vehicles.GetByGeotabID(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, 0.0, b.CurrentMileage)
		assert.False(t, b.LastSync.IsZero())
	})
}
