package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	defaultTimeout = 15 * time.Second

	directionsPath = "/v2/directions/driving-car"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Match is a successful distance-based pairing of a customer and a cleaner.
type Match struct {
	DistanceKm float64 `json:"distance_km"`
	Message    string  `json:"message"`
}

// RouteClient computes driving distances via the OpenRouteService directions
// API.
type RouteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// RouteClientOption configures the client.
type RouteClientOption func(*RouteClient)

// WithBaseURL overrides the OpenRouteService endpoint, for tests and proxies.
func WithBaseURL(url string) RouteClientOption {
	return func(c *RouteClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) RouteClientOption {
	return func(c *RouteClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewRouteClient creates an OpenRouteService directions client.
func NewRouteClient(apiKey string, logger *logging.Logger, opts ...RouteClientOption) *RouteClient {
	if logger == nil {
		logger = logging.Default()
	}
	c := &RouteClient{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type directionsRequest struct {
	// OpenRouteService wants [lon, lat] pairs.
	Coordinates [][2]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Segments []struct {
			Distance float64 `json:"distance"`
		} `json:"segments"`
	} `json:"routes"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// MatchCleaner returns the driving distance between a customer and a cleaner,
// rounded to two decimals.
func (c *RouteClient) MatchCleaner(ctx context.Context, customer, cleaner Coordinates) (*Match, error) {
	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{
			{customer.Lon, customer.Lat},
			{cleaner.Lon, cleaner.Lat},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("matching: encode directions request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+directionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("matching: build directions request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("matching: call directions API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("matching: read directions response: %w", err)
	}

	var decoded directionsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("matching: decode directions response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := decoded.Error.Message
		if msg == "" {
			msg = "Unknown error"
		}
		c.logger.Warn("directions API error", "status", resp.StatusCode, "message", msg)
		return nil, fmt.Errorf("matching: API error: %s", msg)
	}

	if len(decoded.Routes) == 0 || len(decoded.Routes[0].Segments) == 0 {
		return nil, fmt.Errorf("matching: unexpected API response structure")
	}

	distanceKm := decoded.Routes[0].Segments[0].Distance / 1000
	return &Match{
		DistanceKm: math.Round(distanceKm*100) / 100,
		Message:    "Cleaner matched successfully",
	}, nil
}
