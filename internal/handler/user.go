package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookpulse/internal/httputil"
	"bookpulse/internal/service"
)

type UserHandler struct {
	userService     *service.UserService
	activityService *service.ActivityService
}

func NewUserHandler(userService *service.UserService, activityService *service.ActivityService) *UserHandler {
	return &UserHandler{userService: userService, activityService: activityService}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to fetch user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// DailyActivity exposes any user's zero-filled reading series, for
// profile pages.
func (h *UserHandler) DailyActivity(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
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
