package conversation

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// Handler exposes the scheduling chat over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the scheduling chat HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("conversation: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns a chi router with the scheduling chat routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/chat", h.ChatTurn)
	r.Get("/history", h.GetHistory)
	return r
}

// AdminRoutes returns routes mounted behind admin auth.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Delete("/history", h.ClearHistory)
	return r
}

// ChatTurn handles one conversational turn.
// POST /schedule/chat
func (h *Handler) ChatTurn(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserEmail) == "" {
		http.Error(w, `{"error": "userEmail required"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, `{"error": "message required"}`, http.StatusBadRequest)
		return
	}

	resp, err := h.service.Chat(r.Context(), req)
	if err != nil {
		h.logger.Error("chat turn failed", "user_key", req.UserEmail, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, resp)
}

// GetHistory returns the caller's current conversation session.
// GET /schedule/history?email=...&limit=...
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.service.History(r.Context(), email, limit)
	if err != nil {
		h.logger.Error("failed to load conversation history", "user_key", email, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, map[string]any{
		"email":   email,
		"history": entries,
	})
}

// ClearHistory wipes a user's conversation log. Admin only.
// DELETE /admin/schedule/history?email=...
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		http.Error(w, `{"error": "email required"}`, http.StatusBadRequest)
		return
	}

	if err := h.service.Reset(r.Context(), email); err != nil {
		h.logger.Error("failed to clear conversation history", "user_key", email, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("conversation history cleared", "user_key", email)
	writeJSON(w, h.logger, map[string]string{"status": "cleared", "email": email})
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
