package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsync/server/internal/config"
	"github.com/fleetsync/server/internal/geotab"
	"github.com/fleetsync/server/internal/models"
	"github.com/fleetsync/server/internal/repository"
	"github.com/fleetsync/server/internal/services"
)

type handlerFixture struct {
	vehicles      *repository.VehicleRepository
	schedules     *repository.ScheduleRepository
	notifications *repository.NotificationRepository
	logs          *repository.MaintenanceLogRepository
	sync          *services.SyncService
	logService    *services.LogService
}

func setupFixture(t *testing.T) *handlerFixture {
	t.Helper()

	db, err := repository.NewSQLiteDB(filepath.Join(t.TempDir(), "fleetsync-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	vehicles := repository.NewVehicleRepository(db)
	schedules := repository.NewScheduleRepository(db)
	notifications := repository.NewNotificationRepository(db)
	logs := repository.NewMaintenanceLogRepository(db)

	client := geotab.NewClient(time.Second)
	reconciler := services.NewReconcileService(vehicles, nil)
	usage := services.NewUsageService(client, vehicles, nil, nil, time.Hour)
	evaluator := services.NewEvaluator(24 * time.Hour)
	mailer := services.NewSMTPService(config.SMTP{}, nil)
	dispatcher := services.NewDispatchService(mailer, notifications, schedules, nil, nil, nil)
	sync := services.NewSyncService(client, geotab.Credentials{}, reconciler, usage, evaluator,
		dispatcher, vehicles, schedules, nil, nil, nil, time.Minute, time.Minute)

	return &handlerFixture{
		vehicles:      vehicles,
		schedules:     schedules,
		notifications: notifications,
		logs:          logs,
		sync:          sync,
		logService:    services.NewLogService(logs, schedules, vehicles, nil),
	}
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestStatusHandler(t *testing.T) {
	t.Run("reports when no cycle has completed", func(t *testing.T) {
		f := setupFixture(t)
		h := NewStatusHandler(f.sync, f.notifications)

		rec := httptest.NewRecorder()
		h.LastCycle(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "no cycle completed yet")
	})

	t.Run("lists notifications newest first", func(t *testing.T) {
		f := setupFixture(t)
		h := NewStatusHandler(f.sync, f.notifications)

		for _, title := range []string{"first", "second"} {
			n, err := models.NewNotification(title, "msg", models.NotificationMaintenance)
			require.NoError(t, err)
			require.NoError(t, f.notifications.Add(context.Background(), n))
			time.Sleep(5 * time.Millisecond)
		}

		rec := httptest.NewRecorder()
		h.ListNotifications(rec, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp models.NotificationListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Notifications, 2)
		assert.Equal(t, 2, resp.TotalCount)
		assert.Equal(t, "second", resp.Notifications[0].Title)
	})
}

func TestRecordLog(t *testing.T) {
	t.Run("creates a log entry", func(t *testing.T) {
		f := setupFixture(t)
		vehicle, err := models.NewVehicle("b1", "Truck 1", "")
		require.NoError(t, err)
		require.NoError(t, f.vehicles.Add(context.Background(), vehicle))

		body, _ := json.Marshal(map[string]interface{}{
			"vehicleId":          vehicle.ID,
			"taskName":           "Oil Change",
			"performedAtMileage": 9800,
			"cost":               89.50,
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/logs", bytes.NewReader(body))
		NewMaintenanceHandler(f.logService).RecordLog(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var entry models.MaintenanceLog
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
		assert.NotZero(t, entry.ID)
	})

	t.Run("unknown vehicle returns 404", func(t *testing.T) {
		f := setupFixture(t)

		body, _ := json.Marshal(map[string]interface{}{
			"vehicleId": 42,
			"taskName":  "Oil Change",
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/logs", bytes.NewReader(body))
		NewMaintenanceHandler(f.logService).RecordLog(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		f := setupFixture(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/logs", bytes.NewReader([]byte("{")))
		NewMaintenanceHandler(f.logService).RecordLog(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
