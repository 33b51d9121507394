package chatbot

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// ChatRequest is the request body for the assistant chat endpoint.
type ChatRequest struct {
	UserEmail string `json:"userEmail"`
	Message   string `json:"message"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// Handler exposes the general assistant over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the assistant chat HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("chatbot: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns a chi router with the assistant chat route.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/chat", h.Chat)
	return r
}

// Chat answers one free-form assistant message.
// POST /chatbot/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
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

	reply, err := h.service.Chat(r.Context(), req.UserEmail, req.Message)
	if err != nil {
		h.logger.Error("assistant chat failed", "user_key", req.UserEmail, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ChatResponse{Response: reply}); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
