package matching

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// Handler exposes distance-based cleaner matching over HTTP.
type Handler struct {
	client *RouteClient
	logger *logging.Logger
}

// NewHandler creates the matching HTTP handler.
func NewHandler(client *RouteClient, logger *logging.Logger) *Handler {
	if client == nil {
		panic("matching: route client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger}
}

// Routes returns a chi router with the matching routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.MatchCleaner)
	return r
}

// MatchCleaner suggests a cleaner based on driving distance.
// GET /match/?customer_lat=&customer_lon=&cleaner_lat=&cleaner_lon=
func (h *Handler) MatchCleaner(w http.ResponseWriter, r *http.Request) {
	customer, ok := coordsFromQuery(w, r, "customer_lat", "customer_lon")
	if !ok {
		return
	}
	cleaner, ok := coordsFromQuery(w, r, "cleaner_lat", "cleaner_lon")
	if !ok {
		return
	}

	match, err := h.client.MatchCleaner(r.Context(), customer, cleaner)
	if err != nil {
		h.logger.Warn("cleaner match failed", "error", err)
		// Upstream failures keep the flat {"error": ...} shape clients of the
		// original API already handle.
		writeMatchJSON(w, h.logger, map[string]string{"error": err.Error()})
		return
	}
	writeMatchJSON(w, h.logger, match)
}

func coordsFromQuery(w http.ResponseWriter, r *http.Request, latKey, lonKey string) (Coordinates, bool) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get(latKey), 64)
	if err != nil {
		http.Error(w, `{"error": "`+latKey+` must be a number"}`, http.StatusBadRequest)
		return Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get(lonKey), 64)
	if err != nil {
		http.Error(w, `{"error": "`+lonKey+` must be a number"}`, http.StatusBadRequest)
		return Coordinates{}, false
	}
	return Coordinates{Lat: lat, Lon: lon}, true
}

func writeMatchJSON(w http.ResponseWriter, logger *logging.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode match response", "error", err)
	}
}
