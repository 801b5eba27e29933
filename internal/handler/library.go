package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookpulse/internal/httputil"
	"bookpulse/internal/model"
	"bookpulse/internal/service"
	"bookpulse/internal/transport/http/middleware"
)

type LibraryHandler struct {
	libraryService *service.LibraryService
}

func NewLibraryHandler(libraryService *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

type addEntryRequest struct {
	BookID      int64                `json:"book_id"`
	Status      *model.ReadingStatus `json:"status"`
	CurrentPage *int                 `json:"current_page"`
}

func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	entry, err := h.libraryService.AddEntry(r.Context(), userID, req.BookID, req.Status, req.CurrentPage)
	if err != nil {
		var dup *model.AlreadyInLibraryError
		if errors.As(err, &dup) {
			// Tell the client which entry already holds this book.
			httputil.WriteJSON(w, http.StatusConflict, map[string]interface{}{
				"error": map[string]interface{}{
					"code":     httputil.ErrCodeConflict,
					"message":  err.Error(),
					"entry_id": dup.EntryID,
					"status":   dup.Status,
				},
			})
			return
		}
		httputil.WriteServiceError(w, err, "Failed to add book to library")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	entries, err := h.libraryService.List(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to list library")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

type updateProgressRequest struct {
	CurrentPage int `json:"current_page"`
}

func (h *LibraryHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid entry ID")
		return
	}

	var req updateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	entry, err := h.libraryService.UpdateProgress(r.Context(), userID, entryID, req.CurrentPage)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to update progress")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *LibraryHandler) MarkFinished(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid entry ID")
		return
	}

	entry, err := h.libraryService.MarkFinished(r.Context(), userID, entryID)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to mark entry finished")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *LibraryHandler) Patch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid entry ID")
		return
	}

	var patch model.EntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	entry, err := h.libraryService.PatchEntry(r.Context(), userID, entryID, patch)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to update entry")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid entry ID")
		return
	}

	if err := h.libraryService.RemoveEntry(r.Context(), userID, entryID); err != nil {
		httputil.WriteServiceError(w, err, "Failed to remove entry")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Entry removed from library",
	})
}
