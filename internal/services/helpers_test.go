package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fleetsync/server/internal/geotab"
	"github.com/fleetsync/server/internal/models"
	"github.com/fleetsync/server/internal/repository"
)

// testRepos bundles sqlite-backed repositories for service tests.
type testRepos struct {
	db            *sql.DB
	vehicles      *repository.VehicleRepository
	schedules     *repository.ScheduleRepository
	notifications *repository.NotificationRepository
	logs          *repository.MaintenanceLogRepository
}

func setupRepos(t *testing.T) *testRepos {
	t.Helper()

	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "fleetsync-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testRepos{
		db:            db,
		vehicles:      repository.NewVehicleRepository(db),
		schedules:     repository.NewScheduleRepository(db),
		notifications: repository.NewNotificationRepository(db),
		logs:          repository.NewMaintenanceLogRepository(db),
	}
}

func addVehicle(t *testing.T, repos *testRepos, geotabID, name string) *models.Vehicle {
	t.Helper()

	vehicle, err := models.NewVehicle(geotabID, name, "")
	require.NoError(t, err)
	require.NoError(t, repos.vehicles.Add(context.Background(), vehicle))
	return vehicle
}

func addSchedule(t *testing.T, repos *testRepos, vehicleID int64, task string, tracking models.TrackingType, interval, lastPerformed float64, thresholds string) *models.MaintenanceSchedule {
	t.Helper()

	schedule := &models.MaintenanceSchedule{
		VehicleID:          vehicleID,
		TaskName:           task,
		TrackingType:       tracking,
		IntervalValue:      interval,
		AlertThresholds:    thresholds,
		LastPerformedValue: lastPerformed,
		LastPerformedDate:  time.Now().UTC().Add(-90 * 24 * time.Hour),
		IsActive:           true,
	}
	require.NoError(t, repos.schedules.Add(context.Background(), schedule))
	return schedule
}

// fakeAPI is a programmable TelemetryAPI stub.
type fakeAPI struct {
	authenticate  func(creds geotab.Credentials) (*geotab.Session, error)
	listDevices   func(session *geotab.Session) ([]geotab.DeviceRecord, error)
	latestReading func(deviceID, diagnosticID string) (*geotab.Reading, error)
}

func (f *fakeAPI) Authenticate(_ context.Context, creds geotab.Credentials) (*geotab.Session, error) {
	if f.authenticate != nil {
		return f.authenticate(creds)
	}
	return &geotab.Session{SessionID: "test-session", Database: "testdb"}, nil
}

func (f *fakeAPI) ListDevices(_ context.Context, session *geotab.Session) ([]geotab.DeviceRecord, error) {
	if f.listDevices != nil {
		return f.listDevices(session)
	}
	return nil, nil
}

func (f *fakeAPI) LatestReading(_ context.Context, _ *geotab.Session, deviceID, diagnosticID string, _ time.Time) (*geotab.Reading, error) {
	if f.latestReading != nil {
		return f.latestReading(deviceID, diagnosticID)
	}
	return nil, nil
}

// recordingMailer captures outbound alert emails.
type recordingMailer struct {
	subjects []string
	bodies   []string
	err      error
}

func (m *recordingMailer) Send(subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, body)
	return nil
}

func (m *recordingMailer) Configured() bool { return true }
