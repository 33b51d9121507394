package scheduling

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/smartcleanhq/cleaning-ai-platform/internal/llm"
	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

const (
	dateLayout     = "2006-01-02"
	defaultTimeout = 10 * time.Second
)

var dateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ErrNotEnoughHistory means fewer than two dates were given and the interval
// fallback has nothing to extrapolate from.
var ErrNotEnoughHistory = errors.New("scheduling: need at least two dates to predict")

// Predictor suggests the next cleaning date from a visit history. The model
// answer is used when it contains a valid date; otherwise the last interval
// in the history is extrapolated.
type Predictor struct {
	client  llm.Client
	logger  *logging.Logger
	timeout time.Duration
}

// NewPredictor creates the schedule predictor. A nil client always uses the
// interval fallback.
func NewPredictor(client llm.Client, logger *logging.Logger) *Predictor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Predictor{client: client, logger: logger, timeout: defaultTimeout}
}

// ParseDates decodes a comma-separated list of YYYY-MM-DD dates, sorted
// ascending.
func ParseDates(raw string) ([]time.Time, error) {
	parts := strings.Split(raw, ",")
	dates := make([]time.Time, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.Parse(dateLayout, part)
		if err != nil {
			return nil, fmt.Errorf("scheduling: invalid date %q: %w", part, err)
		}
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return nil, errors.New("scheduling: no dates given")
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// PredictNext returns the suggested next cleaning date as YYYY-MM-DD.
func (p *Predictor) PredictNext(ctx context.Context, dates []time.Time) (string, error) {
	if p.client != nil {
		if next, ok := p.askModel(ctx, dates); ok {
			return next, nil
		}
	}
	return extrapolate(dates)
}

func (p *Predictor) askModel(ctx context.Context, dates []time.Time) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format(dateLayout))
	}
	prompt := fmt.Sprintf(
		"Given these cleaning dates: %s, suggest the next optimal cleaning date in YYYY-MM-DD format.",
		strings.Join(formatted, ", "),
	)

	resp, err := p.client.Complete(callCtx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   30,
		Temperature: 0.2,
	})
	if err != nil {
		p.logger.Warn("schedule model unavailable, using interval fallback", "error", err)
		return "", false
	}

	// The model answer is advisory: only a well-formed date after the last
	// visit is accepted.
	candidate := dateRe.FindString(resp.Text)
	if candidate == "" {
		return "", false
	}
	next, err := time.Parse(dateLayout, candidate)
	if err != nil || !next.After(dates[len(dates)-1]) {
		return "", false
	}
	return candidate, true
}

func extrapolate(dates []time.Time) (string, error) {
	if len(dates) < 2 {
		return "", ErrNotEnoughHistory
	}
	last := dates[len(dates)-1]
	interval := last.Sub(dates[len(dates)-2])
	return last.Add(interval).Format(dateLayout), nil
}
