package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "foodgram/internal/log"
)

type healthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health is a readiness handler for infrastructure probes. It reports the
// database as unavailable when it cannot be pinged, with status 503.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status:   "ok",
		Database: databaseStatus(r),
		Time:     time.Now().UTC(),
	}
	status := http.StatusOK
	if resp.Database == "unavailable" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		return
	}
	applog.Debug(r.Context(), "health check responded", "status", resp.Status)
}

func databaseStatus(r *http.Request) string {
	if database == nil {
		return "not_configured"
	}
	sqlDB, err := database.DB()
	if err != nil {
		return "unavailable"
	}
	if err := sqlDB.PingContext(r.Context()); err != nil {
		applog.Warn(r.Context(), "database ping failed", "error", err)
		return "unavailable"
	}
	return "ok"
}
