package pricing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/smartcleanhq/cleaning-ai-platform/internal/llm"
	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

const (
	basePriceBDT = 1500

	defaultTimeout = 10 * time.Second
)

// premiumAreas carry a 20% surcharge.
var premiumAreas = map[string]struct{}{
	"gulshan":   {},
	"banani":    {},
	"dhanmondi": {},
}

// Quote is a recommended price for a cleaning engagement.
type Quote struct {
	RecommendedPrice string `json:"recommended_price"`
}

// Service suggests prices, asking the model first and falling back to a
// deterministic heuristic when the model is unavailable or answers nonsense.
type Service struct {
	client  llm.Client
	logger  *logging.Logger
	timeout time.Duration
}

// NewService creates the pricing service. A nil client skips the model and
// always prices by heuristic.
func NewService(client llm.Client, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, logger: logger, timeout: defaultTimeout}
}

// Suggest returns a recommended price for the area, monthly frequency, and
// customer rating.
func (s *Service) Suggest(ctx context.Context, area string, frequency int, rating float64) Quote {
	if s.client != nil {
		if quote, ok := s.askModel(ctx, area, frequency, rating); ok {
			return quote
		}
	}
	return Quote{RecommendedPrice: fmt.Sprintf("BDT %d per session", heuristicPrice(area, frequency, rating))}
}

func (s *Service) askModel(ctx context.Context, area string, frequency int, rating float64) (Quote, bool) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"What is a fair price in BDT for cleaning service in %s area, %d times per month, customer rating %.1f/5? Answer with just the price.",
		area, frequency, rating,
	)
	resp, err := s.client.Complete(callCtx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   30,
		Temperature: 0.2,
	})
	if err != nil {
		s.logger.Warn("price model unavailable, using heuristic", "error", err, "area", area)
		return Quote{}, false
	}

	price := strings.TrimSpace(resp.Text)
	if price == "" {
		return Quote{}, false
	}
	return Quote{RecommendedPrice: price}, true
}

// heuristicPrice is the deterministic fallback: base price, premium-area
// surcharge, volume discount at 4+ cleanings a month, and a ±10% rating
// adjustment per point from the 3.0 midpoint.
func heuristicPrice(area string, frequency int, rating float64) int {
	price := float64(basePriceBDT)
	if _, ok := premiumAreas[strings.ToLower(strings.TrimSpace(area))]; ok {
		price *= 1.2
	}
	if frequency >= 4 {
		price *= 0.9
	}
	price *= 1 + (rating-3)*0.1
	return int(math.Round(price))
}
