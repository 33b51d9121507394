package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smartcleanhq/cleaning-ai-platform/internal/bookings"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/chatbot"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/conversation"
	httpmiddleware "github.com/smartcleanhq/cleaning-ai-platform/internal/http/middleware"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/matching"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/pricing"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/scheduling"
	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *conversation.Handler
	ChatbotHandler     *chatbot.Handler
	BookingsHandler    *bookings.Handler
	SchedulingHandler  *scheduling.Handler
	PricingHandler     *pricing.Handler
	MatchingHandler    *matching.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/schedule", func(r chi.Router) {
		if cfg.SchedulingHandler != nil {
			r.Get("/", cfg.SchedulingHandler.PredictNext)
		}
		if cfg.ChatHandler != nil {
			r.Post("/chat", cfg.ChatHandler.ChatTurn)
			r.Get("/history", cfg.ChatHandler.GetHistory)
		}
	})

	if cfg.ChatbotHandler != nil {
		r.Mount("/chatbot", cfg.ChatbotHandler.Routes())
	}
	if cfg.PricingHandler != nil {
		r.Mount("/price", cfg.PricingHandler.Routes())
	}
	if cfg.MatchingHandler != nil {
		r.Mount("/match", cfg.MatchingHandler.Routes())
	}

	// Admin endpoints behind HMAC JWT auth.
	if cfg.ChatHandler != nil || cfg.BookingsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.ChatHandler != nil {
				admin.Mount("/schedule", cfg.ChatHandler.AdminRoutes())
			}
			if cfg.BookingsHandler != nil {
				admin.Mount("/bookings", cfg.BookingsHandler.Routes())
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
