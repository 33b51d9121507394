package pricing

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// Handler exposes price suggestions over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the pricing HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("pricing: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns a chi router with the pricing routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.SuggestPrice)
	return r
}

// SuggestPrice recommends a fair cleaning price.
// GET /price/?area=Dhanmondi&frequency=2&rating=4.5
func (h *Handler) SuggestPrice(w http.ResponseWriter, r *http.Request) {
	area := strings.TrimSpace(r.URL.Query().Get("area"))
	if area == "" {
		http.Error(w, `{"error": "area required"}`, http.StatusBadRequest)
		return
	}
	frequency, err := strconv.Atoi(r.URL.Query().Get("frequency"))
	if err != nil || frequency < 0 {
		http.Error(w, `{"error": "frequency must be a non-negative integer"}`, http.StatusBadRequest)
		return
	}
	rating, err := strconv.ParseFloat(r.URL.Query().Get("rating"), 64)
	if err != nil || rating < 0 || rating > 5 {
		http.Error(w, `{"error": "rating must be between 0 and 5"}`, http.StatusBadRequest)
		return
	}

	quote := h.service.Suggest(r.Context(), area, frequency, rating)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(quote); err != nil {
		h.logger.Error("failed to encode price quote", "error", err)
	}
}
