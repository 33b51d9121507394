package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/smartcleanhq/cleaning-ai-platform/pkg/logging"
)

// GoogleConfig configures the Google Calendar client.
type GoogleConfig struct {
	// CredentialsJSON is the OAuth2 client secret file from the Google Cloud
	// Console ("installed" or "web" application).
	CredentialsJSON string
	// TokenJSON is a previously authorized oauth2 token.
	TokenJSON  string
	CalendarID string
	Timezone   string
	Timeout    time.Duration
}

// GoogleClient books appointments into Google Calendar.
type GoogleClient struct {
	events     *gcal.EventsService
	calendarID string
	timezone   string
	timeout    time.Duration
	logger     *logging.Logger
}

// NewGoogleClient builds an authorized Google Calendar client.
func NewGoogleClient(ctx context.Context, cfg GoogleConfig, logger *logging.Logger) (*GoogleClient, error) {
	if strings.TrimSpace(cfg.CredentialsJSON) == "" {
		return nil, errors.New("calendar: google credentials are required")
	}
	if strings.TrimSpace(cfg.TokenJSON) == "" {
		return nil, errors.New("calendar: google oauth token is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	oauthCfg, err := google.ConfigFromJSON([]byte(cfg.CredentialsJSON), gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("calendar: parse google credentials: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(cfg.TokenJSON), &token); err != nil {
		return nil, fmt.Errorf("calendar: parse oauth token: %w", err)
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("calendar: create calendar service: %w", err)
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	timezone := cfg.Timezone
	if timezone == "" {
		timezone = "Asia/Dhaka"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &GoogleClient{
		events:     svc.Events,
		calendarID: calendarID,
		timezone:   timezone,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// CreateEvent inserts the appointment with attendee and reminder overrides.
// Failures are reported in the result, never as a transport error.
func (c *GoogleClient) CreateEvent(ctx context.Context, input EventInput) Result {
	event := &gcal.Event{
		Summary:     input.Title,
		Description: input.Description,
		Start: &gcal.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 30},
				{Method: "popup", Minutes: 10},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		ColorId: "2",
	}
	if input.AttendeeEmail != "" {
		event.Attendees = []*gcal.EventAttendee{{Email: input.AttendeeEmail}}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	created, err := c.events.Insert(c.calendarID, event).Context(callCtx).Do()
	if err != nil {
		c.logger.Error("calendar event creation failed", "error", err, "title", input.Title)
		return Result{Status: StatusError, Message: err.Error()}
	}

	var startTime string
	if created.Start != nil {
		startTime = created.Start.DateTime
	}
	return Result{
		Status:    StatusSuccess,
		EventID:   created.Id,
		EventLink: created.HtmlLink,
		Summary:   created.Summary,
		StartTime: startTime,
		Message:   "Appointment created successfully.",
	}
}
