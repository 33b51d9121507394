package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// Handler exposes next-date prediction over HTTP.
type Handler struct {
	predictor *Predictor
	logger    *logging.Logger
}

// NewHandler creates the prediction HTTP handler.
func NewHandler(predictor *Predictor, logger *logging.Logger) *Handler {
	if predictor == nil {
		panic("scheduling: predictor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{predictor: predictor, logger: logger}
}

// PredictNext suggests the next cleaning date from a visit history.
// GET /schedule/?dates=2026-08-01,2026-08-15
func (h *Handler) PredictNext(w http.ResponseWriter, r *http.Request) {
	dates, err := ParseDates(r.URL.Query().Get("dates"))
	if err != nil {
		http.Error(w, `{"error": "dates must be a comma-separated list of YYYY-MM-DD dates"}`, http.StatusBadRequest)
		return
	}

	next, err := h.predictor.PredictNext(r.Context(), dates)
	if err != nil {
		if errors.Is(err, ErrNotEnoughHistory) {
			http.Error(w, `{"error": "need at least two dates to predict"}`, http.StatusBadRequest)
			return
		}
		h.logger.Error("schedule prediction failed", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"predicted_next_schedule": next}); err != nil {
		h.logger.Error("failed to encode prediction", "error", err)
	}
}
