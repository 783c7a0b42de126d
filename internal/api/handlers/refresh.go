package handlers

import (
	"net/http"

	"github.com/RudolfTheOne/ThetaTracker/internal/scheduler"
	"github.com/RudolfTheOne/ThetaTracker/internal/scheduler/jobs"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// RefreshHandler exposes the forced-refresh trigger and the refresh
// job's execution history.
type RefreshHandler struct {
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewRefreshHandler creates a refresh handler.
func NewRefreshHandler(sched *scheduler.Scheduler, log *logger.Logger) *RefreshHandler {
	return &RefreshHandler{
		scheduler: sched,
		logger:    log.WithField("module", "api"),
	}
}

// TriggerRefresh queues a refresh cycle outside the schedule. The
// pipeline serializes cycles, so a trigger during an in-flight cycle
// waits for it rather than interleaving.
// POST /api/refresh
func (h *RefreshHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.RunJob(jobs.RefreshJobName); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh queued"})
}

// GetHistory returns recent refresh-job executions.
// GET /api/history
func (h *RefreshHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.History(jobs.RefreshJobName))
}
