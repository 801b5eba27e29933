package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookpulse/internal/httputil"
	"bookpulse/internal/model"
	"bookpulse/internal/service"
	"bookpulse/internal/transport/http/middleware"
)

type NoteHandler struct {
	noteService *service.NoteService
}

func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	note, err := h.noteService.Create(r.Context(), userID, req)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to create note")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	noteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid note ID")
		return
	}

	note, err := h.noteService.Get(r.Context(), viewerID, noteID)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to fetch note")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	noteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid note ID")
		return
	}

	if err := h.noteService.Delete(r.Context(), userID, noteID); err != nil {
		httputil.WriteServiceError(w, err, "Failed to delete note")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Note deleted",
	})
}

func (h *NoteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			httputil.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	notes, err := h.noteService.ListForUser(r.Context(), userID, limit)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to list notes")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

func (h *NoteHandler) Like(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	noteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid note ID")
		return
	}

	if err := h.noteService.Like(r.Context(), viewerID, noteID); err != nil {
		httputil.WriteServiceError(w, err, "Failed to like note")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Note liked"})
}

func (h *NoteHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	noteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid note ID")
		return
	}

	if err := h.noteService.Unlike(r.Context(), viewerID, noteID); err != nil {
		httputil.WriteServiceError(w, err, "Failed to unlike note")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Like removed"})
}

type createCommentRequest struct {
	Text string `json:"text"`
}

func (h *NoteHandler) Comment(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	noteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid note ID")
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.noteService.Comment(r.Context(), viewerID, noteID, req.Text)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to add comment")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

func (h *NoteHandler) Comments(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	noteID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid note ID")
		return
	}

	comments, err := h.noteService.Comments(r.Context(), viewerID, noteID)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}
