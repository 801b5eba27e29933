package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookpulse/internal/httputil"
	"bookpulse/internal/service"
	"bookpulse/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followedID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	result, err := h.followService.Follow(r.Context(), followerID, followedID)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to follow user")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followedID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followedID); err != nil {
		httputil.WriteServiceError(w, err, "Failed to unfollow user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully unfollowed user",
	})
}

// Following lists the caller's follows, mutuals first.
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	following, err := h.followService.Following(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to fetch following")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"following": following})
}
