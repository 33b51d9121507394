package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/smartcleanhq/cleaning-ai-platform/internal/bookings"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/calendar"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/catalog"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/observability/metrics"
	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// ChatRequest is one inbound chat turn.
type ChatRequest struct {
	UserEmail string `json:"userEmail"`
	Message   string `json:"message"`
}

// HistoryEntry is a chat line in the response payload.
type HistoryEntry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatResponse is the outcome of one chat turn. Internal failures degrade to
// a fallback reply, so a well-formed request always produces a response.
type ChatResponse struct {
	Response             string           `json:"response"`
	AppointmentConfirmed bool             `json:"appointmentConfirmed"`
	PendingConfirmation  bool             `json:"pendingConfirmation,omitempty"`
	ServiceSelected      string           `json:"serviceSelected,omitempty"`
	SuggestedDatetime    string           `json:"suggestedDatetime,omitempty"`
	CalendarEvent        *calendar.Result `json:"calendarEvent,omitempty"`
	ConversationHistory  []HistoryEntry   `json:"conversationHistory"`
}

// Service is the conversation state machine. It is stateless between calls:
// all state is rehydrated from the message log on every turn, which keeps the
// controller horizontally scalable and crash-safe at the cost of a backward
// scan per turn.
type Service struct {
	log      Log
	catalog  *catalog.Catalog
	resolver Resolver
	calendar calendar.Client
	bookings *bookings.Service
	patterns *ReplyPatterns
	metrics  *metrics.ChatMetrics
	logger   *logging.Logger
	tracer   trace.Tracer

	historyLimit int
}

// ServiceOption configures the controller.
type ServiceOption func(*Service)

// WithHistoryLimit bounds how many trailing log entries each turn rehydrates.
func WithHistoryLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithBookings enables durable booking records on confirmation.
func WithBookings(b *bookings.Service) ServiceOption {
	return func(s *Service) { s.bookings = b }
}

// NewService wires the conversation controller.
func NewService(log Log, cat *catalog.Catalog, resolver Resolver, cal calendar.Client, patterns *ReplyPatterns, m *metrics.ChatMetrics, logger *logging.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		panic("conversation: log cannot be nil")
	}
	if cat == nil {
		panic("conversation: catalog cannot be nil")
	}
	if resolver == nil {
		panic("conversation: resolver cannot be nil")
	}
	if cal == nil {
		panic("conversation: calendar client cannot be nil")
	}
	if patterns == nil {
		patterns = MustDefaultReplyPatterns()
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		log:          log,
		catalog:      cat,
		resolver:     resolver,
		calendar:     cal,
		patterns:     patterns,
		metrics:      m,
		logger:       logger,
		tracer:       otel.Tracer("smartclean.internal.conversation"),
		historyLimit: 30,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat processes one user turn and produces the bot reply. Exactly one
// "Bot: " line is appended per turn; resolution branches additionally append
// their marker. Only log I/O failures surface as errors.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	userKey := strings.TrimSpace(req.UserEmail)
	message := strings.TrimSpace(req.Message)
	if userKey == "" {
		return nil, errors.New("conversation: userEmail required")
	}
	if message == "" {
		return nil, errors.New("conversation: message required")
	}

	ctx, span := s.tracer.Start(ctx, "conversation.chat")
	defer span.End()
	span.SetAttributes(attribute.String("smartclean.user_key", userKey))

	if err := s.log.Append(ctx, userKey, userLinePrefix+message); err != nil {
		span.RecordError(err)
		return nil, err
	}

	history, err := s.log.Recent(ctx, userKey, s.historyLimit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	selected := ExtractSelectedService(history, s.catalog)
	pending := ExtractPendingAppointment(history)

	if pending != nil {
		switch {
		case s.patterns.IsAffirmative(message):
			return s.confirmPending(ctx, userKey, pending)
		case s.patterns.IsNegative(message):
			return s.cancelPending(ctx, userKey)
		}
		// Ambiguous replies while pending fall through to the resolver.
	}

	decision, err := s.resolver.Resolve(ctx, ResolveInput{
		Message:  message,
		History:  history,
		Selected: selected,
		Pending:  pending,
	})
	if err != nil {
		s.logger.Warn("intent resolution failed, using catalogue fallback", "error", err, "user_key", userKey)
		return s.reply(ctx, userKey, s.fallbackReply(), "fallback", nil)
	}

	switch decision.Intent {
	case IntentGreeting, IntentServiceInquiry:
		text := decision.Reply
		if text == "" {
			text = s.greetingReply()
		}
		return s.reply(ctx, userKey, text, "greeting", nil)
	}

	if decision.Intent == IntentServiceSelection {
		if offering, ok := s.catalog.Get(strings.TrimSpace(decision.ServiceID)); ok {
			return s.selectService(ctx, userKey, offering, decision.Reply)
		}
		s.logger.Warn("resolver suggested unknown service, ignoring",
			"service_id", decision.ServiceID, "user_key", userKey)
	}

	// A parseable datetime with a selected service proposes an appointment
	// regardless of the declared intent. Without a selection the hint is a
	// no-op: the user has to pick a service first.
	if start, ok := parseDecisionTime(decision.Datetime); ok && selected != nil {
		return s.proposeAppointment(ctx, userKey, *selected, start)
	}

	text := decision.Reply
	if text == "" {
		text = "I'm here to help you book a cleaning service! Could you tell me which service you're interested in, or when you'd like to schedule?"
	}
	return s.reply(ctx, userKey, text, "default", nil)
}

// History returns the user's current session for display.
func (s *Service) History(ctx context.Context, userKey string, limit int) ([]HistoryEntry, error) {
	entries, err := s.log.CurrentSession(ctx, userKey, limit)
	if err != nil {
		return nil, err
	}
	return toHistory(entries), nil
}

// Reset wipes a user's conversation log.
func (s *Service) Reset(ctx context.Context, userKey string) error {
	return s.log.Clear(ctx, userKey)
}

func (s *Service) confirmPending(ctx context.Context, userKey string, pending *PendingAppointment) (*ChatResponse, error) {
	result := s.calendar.CreateEvent(ctx, calendar.EventInput{
		Title:         "Smart Cleaning - " + pending.ServiceName,
		StartTime:     pending.StartTime,
		EndTime:       pending.EndTime,
		Description:   pending.ServiceDescription + "\nBooked via chat assistant",
		AttendeeEmail: userKey,
	})
	s.metrics.ObserveCalendarWrite(result.Status)

	if result.Status != calendar.StatusSuccess {
		// The pending appointment stays live so the user can retry once the
		// calendar is reachable again.
		text := fmt.Sprintf("❌ Error adding to calendar: %s. Please contact support.", result.Message)
		return s.reply(ctx, userKey, text, "calendar_error", func(resp *ChatResponse) {
			resp.CalendarEvent = &result
		})
	}

	text := fmt.Sprintf("✅ Perfect! Your %s appointment is confirmed for %s. I've added it to your Google Calendar. You'll receive reminders before the appointment. Looking forward to serving you!",
		pending.ServiceName,
		pending.StartTime.Format("January 2, 2006 at 3:04 PM"),
	)
	if err := s.log.Append(ctx, userKey, botLinePrefix+text); err != nil {
		return nil, err
	}
	if err := s.log.Append(ctx, userKey, markerBookingConfirmed); err != nil {
		return nil, err
	}

	s.recordBooking(ctx, userKey, pending, result.EventID)
	s.metrics.ObserveTurn("confirmed")
	s.logger.Info("appointment confirmed",
		"user_key", userKey,
		"service", pending.ServiceName,
		"starts_at", pending.StartTime,
		"event_id", result.EventID,
	)

	resp := &ChatResponse{
		Response:             text,
		AppointmentConfirmed: true,
		CalendarEvent:        &result,
	}
	return s.withHistory(ctx, userKey, resp)
}

func (s *Service) cancelPending(ctx context.Context, userKey string) (*ChatResponse, error) {
	text := "No problem! The appointment wasn't booked. Would you like to schedule a different time or service?"
	if err := s.log.Append(ctx, userKey, botLinePrefix+text); err != nil {
		return nil, err
	}
	if err := s.log.Append(ctx, userKey, markerBookingCancelled); err != nil {
		return nil, err
	}
	s.metrics.ObserveTurn("cancelled")
	s.logger.Info("appointment cancelled", "user_key", userKey)
	return s.withHistory(ctx, userKey, &ChatResponse{Response: text})
}

func (s *Service) selectService(ctx context.Context, userKey string, offering catalog.ServiceOffering, replyText string) (*ChatResponse, error) {
	marker := formatSelectedServiceMarker(offering.ID, offering.Name, offering.DurationHours)
	if err := s.log.Append(ctx, userKey, marker); err != nil {
		return nil, err
	}

	if replyText == "" {
		replyText = fmt.Sprintf("Great choice! **%s** includes:\n%s\n\nThis typically takes about %d hours. When would you like to schedule this service? For example: 'tomorrow at 10 AM' or 'December 15 at 2 PM'",
			offering.Name, offering.Description, offering.DurationHours)
	}
	return s.reply(ctx, userKey, replyText, "selection", func(resp *ChatResponse) {
		resp.ServiceSelected = offering.Name
	})
}

func (s *Service) proposeAppointment(ctx context.Context, userKey string, selected SelectedService, start time.Time) (*ChatResponse, error) {
	end := start.Add(time.Duration(selected.DurationHours) * time.Hour)
	pending := PendingAppointment{
		StartTime:          start,
		EndTime:            end,
		ServiceID:          selected.ID,
		ServiceName:        selected.Name,
		ServiceDescription: selected.Description,
	}

	text := fmt.Sprintf("📅 Perfect! Let me confirm your booking:\n\n🧹 Service: **%s**\n🗓️ Date: %s\n🕐 Time: %s\n⏱️ Duration: %d hours\n\n**Does this look good to you?** Reply 'Yes' to confirm or 'No' to reschedule.",
		selected.Name,
		start.Format("January 2, 2006"),
		start.Format("3:04 PM"),
		selected.DurationHours,
	)
	if err := s.log.Append(ctx, userKey, botLinePrefix+text); err != nil {
		return nil, err
	}
	if err := s.log.Append(ctx, userKey, formatPendingAppointmentMarker(pending)); err != nil {
		return nil, err
	}

	s.metrics.ObserveTurn("proposal")
	resp := &ChatResponse{
		Response:            text,
		PendingConfirmation: true,
		SuggestedDatetime:   start.Format(decisionTimeLayout),
	}
	return s.withHistory(ctx, userKey, resp)
}

// reply appends the bot line, records the turn outcome, and builds the
// response shared by all non-resolution branches.
func (s *Service) reply(ctx context.Context, userKey, text, outcome string, decorate func(*ChatResponse)) (*ChatResponse, error) {
	if err := s.log.Append(ctx, userKey, botLinePrefix+text); err != nil {
		return nil, err
	}
	s.metrics.ObserveTurn(outcome)

	resp := &ChatResponse{Response: text}
	if decorate != nil {
		decorate(resp)
	}
	return s.withHistory(ctx, userKey, resp)
}

func (s *Service) withHistory(ctx context.Context, userKey string, resp *ChatResponse) (*ChatResponse, error) {
	entries, err := s.log.CurrentSession(ctx, userKey, 0)
	if err != nil {
		return nil, err
	}
	resp.ConversationHistory = toHistory(entries)
	return resp, nil
}

func (s *Service) recordBooking(ctx context.Context, userKey string, pending *PendingAppointment, eventID string) {
	if s.bookings == nil {
		return
	}
	_, err := s.bookings.RecordConfirmed(ctx, bookings.Booking{
		UserEmail:       userKey,
		ServiceID:       pending.ServiceID,
		ServiceName:     pending.ServiceName,
		StartsAt:        pending.StartTime,
		EndsAt:          pending.EndTime,
		CalendarEventID: eventID,
	})
	if err != nil {
		// The calendar event exists and the log marker is written; a missing
		// report row is not worth failing the turn over.
		s.logger.Error("failed to record confirmed booking", "error", err, "user_key", userKey)
	}
}

func (s *Service) greetingReply() string {
	var b strings.Builder
	b.WriteString("Hello! 👋 Welcome to Smart Cleaning Services. Here are the cleaning services we offer:\n\n")
	b.WriteString(s.catalog.Listing())
	b.WriteString("Which service would you like to book today?")
	return b.String()
}

func (s *Service) fallbackReply() string {
	return "I apologize for the error. Let me help you book a cleaning service. Which of our services interests you?\n\n" + s.catalog.CompactListing()
}

func toHistory(entries []Entry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntry{Message: e.Text, Timestamp: e.Timestamp})
	}
	return out
}
