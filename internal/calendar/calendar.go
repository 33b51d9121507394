package calendar

import (
	"context"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// EventInput describes the appointment to book.
type EventInput struct {
	Title         string
	StartTime     time.Time
	EndTime       time.Time
	Description   string
	AttendeeEmail string
}

// Result is the outcome of an event creation attempt. Failures are carried in
// the result rather than an error: a calendar outage is a reportable outcome
// of a chat turn, not a reason to abort it.
type Result struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id,omitempty"`
	EventLink string `json:"event_link,omitempty"`
	Summary   string `json:"summary,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	Message   string `json:"message"`
}

// Client creates calendar events for confirmed bookings.
type Client interface {
	CreateEvent(ctx context.Context, input EventInput) Result
}
