package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsync/server/internal/models"
)

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	fire := func(repos *testRepos) *Decision {
		vehicle := addVehicle(t, repos, "b1", "Truck 1")
		schedule := addSchedule(t, repos, vehicle.ID, "Oil Change", models.TrackMiles, 5000, 5000, "500,250,100")
		return &Decision{
			Fire:      true,
			Vehicle:   vehicle,
			Schedule:  schedule,
			TaskName:  schedule.TaskName,
			Current:   9600,
			Due:       10000,
			Remaining: 400,
			Threshold: 500,
			Unit:      "miles",
		}
	}

	t.Run("sends email and persists notification", func(t *testing.T) {
		repos := setupRepos(t)
		mailer := &recordingMailer{}
		svc := NewDispatchService(mailer, repos.notifications, repos.schedules, nil, nil, nil)
		d := fire(repos)

		require.NoError(t, svc.Dispatch(ctx, d))

		require.Len(t, mailer.subjects, 1)
		assert.Equal(t, "Maintenance Due: Truck 1 - Oil Change", mailer.subjects[0])
		assert.Contains(t, mailer.bodies[0], "Oil Change")
		assert.Contains(t, mailer.bodies[0], "400.0 miles")

		notifications, err := repos.notifications.GetRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, models.NotificationMaintenance, notifications[0].Type)
	})

	t.Run("stamps the cooldown after dispatch", func(t *testing.T) {
		repos := setupRepos(t)
		svc := NewDispatchService(&recordingMailer{}, repos.notifications, repos.schedules, nil, nil, nil)
		d := fire(repos)
		require.Nil(t, d.Schedule.LastAlertedAt)

		require.NoError(t, svc.Dispatch(ctx, d))

		stored, err := repos.schedules.GetByID(ctx, d.Schedule.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.LastAlertedAt)
		assert.NotNil(t, d.Schedule.LastAlertedAt)
	})

	t.Run("email failure still records notification and cooldown", func(t *testing.T) {
		repos := setupRepos(t)
		mailer := &recordingMailer{err: errors.New("relay down")}
		svc := NewDispatchService(mailer, repos.notifications, repos.schedules, nil, nil, nil)
		d := fire(repos)

		require.NoError(t, svc.Dispatch(ctx, d))

		count, err := repos.notifications.GetCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		stored, err := repos.schedules.GetByID(ctx, d.Schedule.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastAlertedAt)
	})
}
