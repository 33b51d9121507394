package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartcleanhq/cleaning-ai-platform/internal/llm"
	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

type staticLLM struct {
	text string
	err  error
}

func (s *staticLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Text: s.text}, nil
}

func TestSuggestUsesModelAnswer(t *testing.T) {
	svc := NewService(&staticLLM{text: "BDT 2200 per session"}, logging.Default())
	quote := svc.Suggest(context.Background(), "Dhanmondi", 2, 4.5)
	if quote.RecommendedPrice != "BDT 2200 per session" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestSuggestFallsBackOnModelError(t *testing.T) {
	svc := NewService(&staticLLM{err: errors.New("quota exceeded")}, logging.Default())
	quote := svc.Suggest(context.Background(), "Dhanmondi", 2, 4.5)
	// 1500 * 1.2 (premium area) * 1.0 * 1.15 (rating 4.5) = 2070
	if quote.RecommendedPrice != "BDT 2070 per session" {
		t.Fatalf("unexpected fallback quote: %+v", quote)
	}
}

func TestSuggestFallsBackOnEmptyAnswer(t *testing.T) {
	svc := NewService(&staticLLM{text: "   "}, logging.Default())
	quote := svc.Suggest(context.Background(), "Mirpur", 1, 3)
	if quote.RecommendedPrice != "BDT 1500 per session" {
		t.Fatalf("unexpected fallback quote: %+v", quote)
	}
}

func TestSuggestWithoutModel(t *testing.T) {
	svc := NewService(nil, logging.Default())
	quote := svc.Suggest(context.Background(), "Mirpur", 1, 3)
	if quote.RecommendedPrice != "BDT 1500 per session" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestHeuristicPrice(t *testing.T) {
	cases := []struct {
		name      string
		area      string
		frequency int
		rating    float64
		want      int
	}{
		{"baseline", "Mirpur", 1, 3.0, 1500},
		{"premium area", "Gulshan", 1, 3.0, 1800},
		{"premium area case-insensitive", "  dhanmondi ", 1, 3.0, 1800},
		{"volume discount", "Mirpur", 4, 3.0, 1350},
		{"high rating", "Mirpur", 1, 5.0, 1800},
		{"low rating", "Mirpur", 1, 1.0, 1200},
		{"all adjustments", "Banani", 6, 4.0, 1782},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := heuristicPrice(tc.area, tc.frequency, tc.rating); got != tc.want {
				t.Fatalf("heuristicPrice(%q, %d, %v) = %d, want %d", tc.area, tc.frequency, tc.rating, got, tc.want)
			}
		})
	}
}

func TestSuggestPriceEndpoint(t *testing.T) {
	handler := NewHandler(NewService(nil, logging.Default()), logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/?area=Dhanmondi&frequency=2&rating=4.5", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var quote Quote
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if quote.RecommendedPrice != "BDT 2070 per session" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestSuggestPriceEndpointValidation(t *testing.T) {
	handler := NewHandler(NewService(nil, logging.Default()), logging.Default())

	cases := []string{
		"/?frequency=2&rating=4.5",            // missing area
		"/?area=Dhanmondi&rating=4.5",         // missing frequency
		"/?area=Dhanmondi&frequency=x&rating=4.5",
		"/?area=Dhanmondi&frequency=2&rating=9", // rating out of range
	}
	for _, target := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}
