package conversation

import (
	"testing"
	"time"
)

func TestSelectedServiceMarkerRoundTrip(t *testing.T) {
	marker := formatSelectedServiceMarker("2", "Deep Cleaning", 4)
	if marker != "SELECTED_SERVICE: 2|Deep Cleaning|4" {
		t.Fatalf("unexpected marker format: %q", marker)
	}

	parsed, ok := parseSelectedServiceMarker(marker)
	if !ok {
		t.Fatalf("expected marker to parse")
	}
	if parsed.ID != "2" || parsed.Name != "Deep Cleaning" || parsed.DurationHours != 4 {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
}

func TestSelectedServiceMarkerMalformed(t *testing.T) {
	cases := []string{
		"SELECTED_SERVICE: 2|Deep Cleaning",          // too few fields
		"SELECTED_SERVICE: 2|Deep Cleaning|four",     // non-numeric duration
		"SELECTED_SERVICE: 2|Deep Cleaning|4|extra",  // too many fields
		"User: SELECTED_SERVICE without payload sep", // no "MARKER: " cut point
	}
	for _, text := range cases {
		if _, ok := parseSelectedServiceMarker(text); ok {
			t.Errorf("expected %q not to parse", text)
		}
	}
}

func TestPendingAppointmentMarkerRoundTrip(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	pending := PendingAppointment{
		StartTime:          start,
		EndTime:            start.Add(4 * time.Hour),
		ServiceID:          "2",
		ServiceName:        "Deep Cleaning",
		ServiceDescription: "Intensive cleaning including inside appliances, baseboards, and detailed work",
	}

	marker := formatPendingAppointmentMarker(pending)
	want := "PENDING_APPOINTMENT: 2026-09-15T10:00:00|2026-09-15T14:00:00|2|Deep Cleaning|Intensive cleaning including inside appliances, baseboards, and detailed work"
	if marker != want {
		t.Fatalf("marker format mismatch:\n got %q\nwant %q", marker, want)
	}

	parsed, ok := parsePendingAppointmentMarker(marker)
	if !ok {
		t.Fatalf("expected marker to parse")
	}
	if !parsed.StartTime.Equal(pending.StartTime) || !parsed.EndTime.Equal(pending.EndTime) {
		t.Fatalf("time mismatch: %+v", parsed)
	}
	if parsed.ServiceID != "2" || parsed.ServiceName != "Deep Cleaning" {
		t.Fatalf("service mismatch: %+v", parsed)
	}
}

func TestPendingAppointmentMarkerToleratesRFC3339(t *testing.T) {
	marker := "PENDING_APPOINTMENT: 2026-09-15T10:00:00Z|2026-09-15T14:00:00Z|1|Standard Cleaning|Basic cleaning"
	parsed, ok := parsePendingAppointmentMarker(marker)
	if !ok {
		t.Fatalf("expected RFC3339 timestamps to parse")
	}
	if parsed.StartTime.Hour() != 10 || parsed.EndTime.Hour() != 14 {
		t.Fatalf("unexpected times: %+v", parsed)
	}
}

func TestPendingAppointmentMarkerMalformed(t *testing.T) {
	cases := []string{
		"PENDING_APPOINTMENT: 2026-09-15T10:00:00|2026-09-15T14:00:00|2|Deep Cleaning", // 4 fields
		"PENDING_APPOINTMENT: not-a-time|2026-09-15T14:00:00|2|Deep Cleaning|desc",
		"PENDING_APPOINTMENT: 2026-09-15T10:00:00|also-bad|2|Deep Cleaning|desc",
	}
	for _, text := range cases {
		if _, ok := parsePendingAppointmentMarker(text); ok {
			t.Errorf("expected %q not to parse", text)
		}
	}
}

func TestMarkerClassification(t *testing.T) {
	cases := []struct {
		text       string
		control    bool
		resolution bool
	}{
		{"User: hello", false, false},
		{"Bot: hello", false, false},
		{"SELECTED_SERVICE: 1|Standard Cleaning|2", true, false},
		{"PENDING_APPOINTMENT: a|b|c|d|e", true, false},
		{"BOOKING_CONFIRMED", true, true},
		{"BOOKING_CANCELLED", true, true},
		// Substring semantics are intentional: embedded markers still count.
		{"Bot: done BOOKING_CONFIRMED", true, true},
	}
	for _, tc := range cases {
		if got := isControlMarker(tc.text); got != tc.control {
			t.Errorf("isControlMarker(%q) = %v, want %v", tc.text, got, tc.control)
		}
		if got := isResolutionMarker(tc.text); got != tc.resolution {
			t.Errorf("isResolutionMarker(%q) = %v, want %v", tc.text, got, tc.resolution)
		}
	}
}
