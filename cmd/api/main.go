package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/smartcleanhq/cleaning-ai-platform/internal/api/router"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/bookings"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/calendar"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/catalog"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/chatbot"
	appconfig "github.com/smartcleanhq/cleaning-ai-platform/internal/config"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/conversation"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/llm"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/matching"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/observability/metrics"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/pricing"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/scheduling"
	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting cleaning-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"conversation_store", cfg.ConversationStore,
	)

	ctx := context.Background()

	// Prometheus registry with process/go collectors plus the chat metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chatMetrics := metrics.NewChatMetrics(registry)

	// Conversation log backend.
	var convLog conversation.Log
	switch cfg.ConversationStore {
	case "redis":
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer redisClient.Close()
		convLog = conversation.NewRedisLog(redisClient)
	default:
		if cfg.DatabaseURL == "" {
			logger.Error("DATABASE_URL is required for the postgres conversation store")
			os.Exit(1)
		}
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		convLog = conversation.NewPostgresLog(db)
	}

	// LLM clients: OpenAI primary with a Gemini fallback when both keys are
	// configured.
	llmClient := buildLLMClient(ctx, cfg, logger)
	if llmClient == nil {
		logger.Error("no LLM provider configured: set OPENAI_API_KEY or GEMINI_API_KEY")
		os.Exit(1)
	}

	cat := catalog.Default()
	resolver := conversation.NewLLMResolver(llmClient, cat, chatMetrics, logger,
		conversation.WithResolverTimeout(cfg.ResolverTimeout),
		conversation.WithContextWindow(cfg.ContextWindow),
	)

	calClient, err := calendar.NewGoogleClient(ctx, calendar.GoogleConfig{
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		TokenJSON:       cfg.GoogleTokenJSON,
		CalendarID:      cfg.CalendarID,
		Timezone:        cfg.CalendarTimezone,
		Timeout:         cfg.CalendarTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize google calendar client", "error", err)
		os.Exit(1)
	}

	patterns, err := conversation.NewReplyPatterns(cfg.ExtraAffirmationPatterns, cfg.ExtraNegationPatterns)
	if err != nil {
		logger.Error("invalid reply pattern configuration", "error", err)
		os.Exit(1)
	}

	chatOpts := []conversation.ServiceOption{
		conversation.WithHistoryLimit(cfg.HistoryLimit),
	}
	// Booking records are optional: without a pgx pool the confirmed
	// appointments live only in the conversation log and the calendar.
	var bookingsHandler *bookings.Handler
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		bookingsService := bookings.NewService(bookings.NewRepository(pool), logger)
		chatOpts = append(chatOpts, conversation.WithBookings(bookingsService))
		bookingsHandler = bookings.NewHandler(bookingsService, logger)
	}

	chatService := conversation.NewService(convLog, cat, resolver, calClient, patterns, chatMetrics, logger, chatOpts...)
	chatHandler := conversation.NewHandler(chatService, logger)

	// Free-form assistant over the same log and model stack.
	assistant := chatbot.NewService(llmClient, convLog, logger)
	assistantHandler := chatbot.NewHandler(assistant, logger)

	predictor := scheduling.NewPredictor(llmClient, logger)
	pricingService := pricing.NewService(llmClient, logger)
	routeClient := matching.NewRouteClient(cfg.OpenRouteAPIKey, logger,
		matching.WithBaseURL(cfg.OpenRouteBaseURL),
	)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		ChatbotHandler:     assistantHandler,
		BookingsHandler:    bookingsHandler,
		SchedulingHandler:  scheduling.NewHandler(predictor, logger),
		PricingHandler:     pricing.NewHandler(pricingService, logger),
		MatchingHandler:    matching.NewHandler(routeClient, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) llm.Client {
	var primary, fallback llm.Client

	if cfg.OpenAIAPIKey != "" {
		client, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			logger.Error("failed to initialize openai client", "error", err)
			os.Exit(1)
		}
		primary = client
	}
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to initialize gemini client", "error", err)
			os.Exit(1)
		}
		if primary == nil {
			primary = client
		} else {
			fallback = client
		}
	}

	switch {
	case primary == nil:
		return nil
	case fallback == nil:
		return primary
	default:
		return llm.NewFallbackClient(primary, fallback, logger)
	}
}
