package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetsync/server/internal/models"
	"github.com/fleetsync/server/internal/services"
)

// MaintenanceHandler records completed maintenance work so schedules
// reset from the new baseline.
type MaintenanceHandler struct {
	logs *services.LogService
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(logs *services.LogService) *MaintenanceHandler {
	return &MaintenanceHandler{logs: logs}
}

type recordLogRequest struct {
	VehicleID          int64   `json:"vehicleId"`
	TaskName           string  `json:"taskName"`
	PerformedAtMileage float64 `json:"performedAtMileage"`
	PerformedAtHours   float64 `json:"performedAtHours"`
	Cost               float64 `json:"cost"`
	Notes              string  `json:"notes"`
}

// RecordLog persists a maintenance log entry and resets matching schedules
func (h *MaintenanceHandler) RecordLog(w http.ResponseWriter, r *http.Request) {
	var req recordLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.logs.RecordService(r.Context(), req.VehicleID, req.TaskName,
		req.PerformedAtMileage, req.PerformedAtHours, req.Cost, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrVehicleNotFound):
			writeError(w, http.StatusNotFound, "vehicle not found")
		case errors.Is(err, models.ErrEmptyTaskName):
			writeError(w, http.StatusBadRequest, "task name is required")
		default:
			writeError(w, http.StatusInternalServerError, "failed to record maintenance log")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}
