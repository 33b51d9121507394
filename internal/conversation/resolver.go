package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smartcleanhq/cleaning-ai-platform/internal/catalog"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/llm"
	"github.com/smartcleanhq/cleaning-ai-platform/internal/observability/metrics"
	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// Intent classes the resolver may return.
const (
	IntentGreeting         = "greeting"
	IntentServiceInquiry   = "service_inquiry"
	IntentServiceSelection = "service_selection"
	IntentDatetimeProvided = "datetime_provided"
	IntentGeneralQuestion  = "general_question"
)

// decisionTimeLayout is the datetime format the resolver is asked to emit.
const decisionTimeLayout = "2006-01-02 15:04"

// ErrResolverUnavailable signals that the NLU oracle failed or returned
// output that could not be parsed. Callers fall back to a deterministic
// reply; the failure never reaches the end user as an error.
var ErrResolverUnavailable = errors.New("conversation: intent resolver unavailable")

// Decision is the structured output of the NLU oracle. Its fields are
// advisory hints: the controller revalidates the service ID against the
// catalogue and the datetime for parseability before acting on them.
type Decision struct {
	Intent    string `json:"intent"`
	ServiceID string `json:"selected_service_id"`
	Datetime  string `json:"datetime"`
	Reply     string `json:"response"`
}

// ResolveInput carries the conversation context handed to the oracle.
type ResolveInput struct {
	Message  string
	History  []Entry
	Selected *SelectedService
	Pending  *PendingAppointment
}

// Resolver classifies a user message given the conversation so far.
type Resolver interface {
	Resolve(ctx context.Context, input ResolveInput) (Decision, error)
}

// LLMResolver delegates intent classification to an LLM and parses its
// JSON reply.
type LLMResolver struct {
	client        llm.Client
	catalog       *catalog.Catalog
	logger        *logging.Logger
	metrics       *metrics.ChatMetrics
	timeout       time.Duration
	contextWindow int
	now           func() time.Time
}

// LLMResolverOption configures the resolver.
type LLMResolverOption func(*LLMResolver)

// WithResolverTimeout bounds each oracle call.
func WithResolverTimeout(d time.Duration) LLMResolverOption {
	return func(r *LLMResolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithContextWindow sets how many trailing history lines are sent as context.
func WithContextWindow(n int) LLMResolverOption {
	return func(r *LLMResolver) {
		if n > 0 {
			r.contextWindow = n
		}
	}
}

// WithResolverClock overrides the clock, for tests.
func WithResolverClock(now func() time.Time) LLMResolverOption {
	return func(r *LLMResolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewLLMResolver creates an LLM-backed intent resolver.
func NewLLMResolver(client llm.Client, cat *catalog.Catalog, m *metrics.ChatMetrics, logger *logging.Logger, opts ...LLMResolverOption) *LLMResolver {
	if client == nil {
		panic("conversation: llm client cannot be nil")
	}
	if cat == nil {
		panic("conversation: catalog cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &LLMResolver{
		client:        client,
		catalog:       cat,
		logger:        logger,
		metrics:       m,
		timeout:       25 * time.Second,
		contextWindow: 10,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve asks the oracle to classify the message. Any failure, from
// transport errors to unparsable output, maps to ErrResolverUnavailable.
func (r *LLMResolver) Resolve(ctx context.Context, input ResolveInput) (Decision, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	resp, err := r.client.Complete(callCtx, llm.Request{
		System: []string{r.systemPrompt(input)},
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: r.userPrompt(input)},
		},
		MaxTokens:   512,
		Temperature: 0.7,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.metrics.ObserveResolverLatency(status, time.Since(start).Seconds())

	if err != nil {
		r.logger.Warn("intent resolver call failed", "error", err)
		return Decision{}, fmt.Errorf("%w: %v", ErrResolverUnavailable, err)
	}

	decision, err := parseDecision(resp.Text)
	if err != nil {
		raw := resp.Text
		if len(raw) > 512 {
			raw = raw[:512] + "...(truncated)"
		}
		r.logger.Warn("intent resolver returned unparsable output", "error", err, "raw", raw)
		return Decision{}, fmt.Errorf("%w: %v", ErrResolverUnavailable, err)
	}
	return decision, nil
}

func (r *LLMResolver) systemPrompt(input ResolveInput) string {
	services, _ := json.MarshalIndent(r.catalog.List(), "", "  ")

	selected := "None"
	if input.Selected != nil {
		selected = fmt.Sprintf("%s (%s, %d hours)", input.Selected.Name, input.Selected.ID, input.Selected.DurationHours)
	}
	pending := "None"
	if input.Pending != nil {
		pending = fmt.Sprintf("%s from %s to %s",
			input.Pending.ServiceName,
			input.Pending.StartTime.Format(decisionTimeLayout),
			input.Pending.EndTime.Format(decisionTimeLayout),
		)
	}

	return fmt.Sprintf(`You are a friendly cleaning service booking assistant. Current date/time: %s.

Available Services:
%s

Conversation State:
- Selected Service: %s
- Pending Appointment: %s

Your task: Analyze the user's message and return JSON:
{
  "intent": "greeting|service_inquiry|service_selection|datetime_provided|general_question",
  "selected_service_id": "1-5" or null,
  "datetime": "YYYY-MM-DD HH:MM" or null,
  "response": "Your friendly response to the user"
}

CRITICAL: Return ONLY the JSON object, nothing else. No markdown, no code fences, no explanation.

Conversation Flow:
1. If greeting/inquiry, show the services list
2. If a service was selected, acknowledge and ask for date/time
3. If date/time provided, confirm details and ask for final confirmation
4. Always be conversational and friendly`,
		r.now().Format(decisionTimeLayout),
		services,
		selected,
		pending,
	)
}

func (r *LLMResolver) userPrompt(input ResolveInput) string {
	history := input.History
	if r.contextWindow > 0 && len(history) > r.contextWindow {
		history = history[len(history)-r.contextWindow:]
	}
	var b strings.Builder
	b.WriteString("Previous context:\n")
	for _, e := range history {
		b.WriteString(e.Text)
		b.WriteString("\n")
	}
	b.WriteString("\nCurrent message: ")
	b.WriteString(input.Message)
	return b.String()
}

// parseDecision extracts the JSON decision from raw model output, tolerating
// code fences and surrounding prose.
func parseDecision(raw string) (Decision, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	jsonText := raw
	if !strings.HasPrefix(jsonText, "{") {
		start := strings.Index(jsonText, "{")
		end := strings.LastIndex(jsonText, "}")
		if start >= 0 && end > start {
			jsonText = jsonText[start : end+1]
		}
	}

	var decision Decision
	if err := json.Unmarshal([]byte(jsonText), &decision); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}
	return decision, nil
}

// parseDecisionTime validates the advisory datetime hint.
func parseDecisionTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return time.Time{}, false
	}
	t, err := time.Parse(decisionTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
