package bookings

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// ListResponse is the booking listing payload.
type ListResponse struct {
	Email    string    `json:"email"`
	Bookings []Booking `json:"bookings"`
}

// Handler exposes booking records over HTTP for back-office use.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the bookings HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("bookings: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns the bookings routes; mount these behind admin auth.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List returns a user's bookings, most recent first.
// GET /admin/bookings?email=...&limit=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		http.Error(w, `{"error": "email required"}`, http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, `{"error": "limit must be a non-negative integer"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	rows, err := h.service.ListForUser(r.Context(), email, limit)
	if err != nil {
		h.logger.Error("booking listing failed", "user_email", email, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []Booking{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ListResponse{Email: email, Bookings: rows}); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
