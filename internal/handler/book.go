package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bookpulse/internal/httputil"
	"bookpulse/internal/model"
	"bookpulse/internal/service"
)

type BookHandler struct {
	catalogService *service.CatalogService
}

func NewBookHandler(catalogService *service.CatalogService) *BookHandler {
	return &BookHandler{catalogService: catalogService}
}

type createBookRequest struct {
	ISBN  *string `json:"isbn"`
	Title string  `json:"title"`
	model.BookMetadata
}

// Create resolves or creates a catalog book. Resubmitting a known ISBN
// returns the existing book with 200; a fresh insert returns 201.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	book, err := h.catalogService.ResolveOrCreate(r.Context(), req.ISBN, req.Title, req.BookMetadata)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to create book")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, book)
}

func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid book ID")
		return
	}

	book, err := h.catalogService.Get(r.Context(), bookID)
	if err != nil {
		httputil.WriteServiceError(w, err, "Failed to fetch book")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, book)
}
