package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/smartcleanhq/cleaning-ai-platform/internal/conversation"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/llm"
	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

const (
	systemPrompt = "You are a helpful AI assistant for Smart Cleaning services."

	userLinePrefix = "User: "
	botLinePrefix  = "Bot: "

	defaultHistoryWindow = 10
	defaultTimeout       = 25 * time.Second
)

// Service is the general AI assistant. Unlike the booking controller it keeps
// no machine state: every line of the shared conversation log, markers
// included, is context for the model, and the reply is whatever the model
// says.
type Service struct {
	client llm.Client
	log    conversation.Log
	logger *logging.Logger
	tracer trace.Tracer

	historyWindow int
	timeout       time.Duration
}

// ServiceOption configures the assistant.
type ServiceOption func(*Service)

// WithHistoryWindow sets how many trailing log lines are sent as context.
func WithHistoryWindow(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.historyWindow = n
		}
	}
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService wires the assistant onto the shared conversation log.
func NewService(client llm.Client, log conversation.Log, logger *logging.Logger, opts ...ServiceOption) *Service {
	if client == nil {
		panic("chatbot: llm client cannot be nil")
	}
	if log == nil {
		panic("chatbot: log cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		client:        client,
		log:           log,
		logger:        logger,
		tracer:        otel.Tracer("smartclean.internal.chatbot"),
		historyWindow: defaultHistoryWindow,
		timeout:       defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat saves the user line, answers it with the trailing history as context,
// and saves the reply. Model failures surface as errors; the deterministic
// fallback belongs to the booking controller, not the assistant.
func (s *Service) Chat(ctx context.Context, userKey, message string) (string, error) {
	userKey = strings.TrimSpace(userKey)
	message = strings.TrimSpace(message)
	if userKey == "" {
		return "", errors.New("chatbot: userEmail required")
	}
	if message == "" {
		return "", errors.New("chatbot: message required")
	}

	ctx, span := s.tracer.Start(ctx, "chatbot.chat")
	defer span.End()
	span.SetAttributes(attribute.String("smartclean.user_key", userKey))

	if err := s.log.Append(ctx, userKey, userLinePrefix+message); err != nil {
		span.RecordError(err)
		return "", err
	}

	history, err := s.log.Recent(ctx, userKey, s.historyWindow)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	messages := make([]llm.Message, 0, len(history))
	for _, e := range history {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: e.Text})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, err := s.client.Complete(callCtx, llm.Request{
		System:      []string{systemPrompt},
		Messages:    messages,
		MaxTokens:   512,
		Temperature: 0.7,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("chatbot: assistant completion failed: %w", err)
	}

	reply := strings.TrimSpace(resp.Text)
	if err := s.log.Append(ctx, userKey, botLinePrefix+reply); err != nil {
		span.RecordError(err)
		return "", err
	}
	return reply, nil
}
