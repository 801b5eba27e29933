package handler

import (
	"net/http"
	"strconv"

	"bookpulse/internal/httputil"
	"bookpulse/internal/service"
	"bookpulse/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > service.FeedMaxLimit {
			httputil.WriteBadRequest(w, "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	feed, err := h.feedService.Build(r.Context(), viewerID, limit)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to build feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"notes": feed})
}
