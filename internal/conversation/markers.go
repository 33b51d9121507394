package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Control markers share the log stream with chat lines. Their format is
// bit-compatible with the existing conversation store:
//
//	SELECTED_SERVICE: {id}|{name}|{durationHours}
//	PENDING_APPOINTMENT: {startISO}|{endISO}|{serviceId}|{serviceName}|{serviceDescription}
//	BOOKING_CONFIRMED
//	BOOKING_CANCELLED
const (
	markerSelectedService    = "SELECTED_SERVICE:"
	markerPendingAppointment = "PENDING_APPOINTMENT:"
	markerBookingConfirmed   = "BOOKING_CONFIRMED"
	markerBookingCancelled   = "BOOKING_CANCELLED"
)

// markerTimeLayout matches the naive ISO-8601 timestamps the original store
// wrote. Parsing also tolerates RFC3339 for interoperability.
const markerTimeLayout = "2006-01-02T15:04:05"

// SelectedService is the derived "service picked, not yet scheduled" fact.
type SelectedService struct {
	ID            string
	Name          string
	Description   string
	DurationHours int
}

// PendingAppointment is the derived "awaiting yes/no" fact.
type PendingAppointment struct {
	StartTime          time.Time
	EndTime            time.Time
	ServiceID          string
	ServiceName        string
	ServiceDescription string
}

func isResolutionMarker(text string) bool {
	return strings.Contains(text, markerBookingConfirmed) || strings.Contains(text, markerBookingCancelled)
}

func isControlMarker(text string) bool {
	return strings.Contains(text, markerSelectedService) ||
		strings.Contains(text, markerPendingAppointment) ||
		isResolutionMarker(text)
}

func formatSelectedServiceMarker(id, name string, durationHours int) string {
	return fmt.Sprintf("%s %s|%s|%d", markerSelectedService, id, name, durationHours)
}

func formatPendingAppointmentMarker(p PendingAppointment) string {
	return fmt.Sprintf("%s %s|%s|%s|%s|%s",
		markerPendingAppointment,
		p.StartTime.Format(markerTimeLayout),
		p.EndTime.Format(markerTimeLayout),
		p.ServiceID,
		p.ServiceName,
		p.ServiceDescription,
	)
}

// parseSelectedServiceMarker decodes the pipe-delimited payload. The service
// description is not carried in the marker; callers join with the catalogue.
func parseSelectedServiceMarker(text string) (SelectedService, bool) {
	_, payload, found := strings.Cut(text, markerSelectedService+" ")
	if !found {
		return SelectedService{}, false
	}
	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return SelectedService{}, false
	}
	duration, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return SelectedService{}, false
	}
	return SelectedService{
		ID:            strings.TrimSpace(parts[0]),
		Name:          parts[1],
		DurationHours: duration,
	}, true
}

func parsePendingAppointmentMarker(text string) (PendingAppointment, bool) {
	_, payload, found := strings.Cut(text, markerPendingAppointment+" ")
	if !found {
		return PendingAppointment{}, false
	}
	parts := strings.Split(payload, "|")
	if len(parts) != 5 {
		return PendingAppointment{}, false
	}
	start, err := parseMarkerTime(parts[0])
	if err != nil {
		return PendingAppointment{}, false
	}
	end, err := parseMarkerTime(parts[1])
	if err != nil {
		return PendingAppointment{}, false
	}
	return PendingAppointment{
		StartTime:          start,
		EndTime:            end,
		ServiceID:          strings.TrimSpace(parts[2]),
		ServiceName:        parts[3],
		ServiceDescription: parts[4],
	}, true
}

func parseMarkerTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(markerTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
