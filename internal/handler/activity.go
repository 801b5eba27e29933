package handler

import (
	"net/http"
	"strconv"

	"bookpulse/internal/httputil"
	"bookpulse/internal/service"
	"bookpulse/internal/transport/http/middleware"
)

type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Daily returns the zero-filled daily pages series for the caller.
// ?days=N controls the window (default 30, capped at 365).
func (h *ActivityHandler) Daily(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	days := 0
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 {
			httputil.WriteBadRequest(w, "days must be a positive integer")
			return
		}
		days = parsed
	}

	series, err := h.activityService.DailySeries(r.Context(), userID, days)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to fetch activity")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"days": series})
}
