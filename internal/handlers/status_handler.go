package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fleetsync/server/internal/models"
	"github.com/fleetsync/server/internal/repository"
	"github.com/fleetsync/server/internal/services"
)

// StatusHandler exposes the engine's operational state: the last sync
// cycle summary and recent notifications.
type StatusHandler struct {
	sync          *services.SyncService
	notifications repository.NotificationRepo
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(sync *services.SyncService, notifications repository.NotificationRepo) *StatusHandler {
	return &StatusHandler{sync: sync, notifications: notifications}
}

// LastCycle returns the most recent sync cycle summary
func (h *StatusHandler) LastCycle(w http.ResponseWriter, r *http.Request) {
	result := h.sync.LastResult()
	w.Header().Set("Content-Type", "application/json")
	if result == nil {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "no cycle completed yet"})
		return
	}
	json.NewEncoder(w).Encode(result)
}

// ListNotifications returns recent in-app notifications, newest first
func (h *StatusHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	notifications, err := h.notifications.GetRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load notifications")
		return
	}
	count, err := h.notifications.GetCount(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count notifications")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.NotificationListResponse{
		Notifications: notifications,
		TotalCount:    count,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: message})
}
