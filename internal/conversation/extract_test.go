package conversation

import (
	"testing"
	"time"

	"github.com/smartcleanhq/cleaning-ai-platform/internal/catalog"
)

func entriesFromTexts(texts ...string) []Entry {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	entries := make([]Entry, 0, len(texts))
	for i, text := range texts {
		entries = append(entries, Entry{
			Text:      text,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return entries
}

func TestExtractSelectedServicePicksNewest(t *testing.T) {
	history := entriesFromTexts(
		"User: hi",
		"SELECTED_SERVICE: 1|Standard Cleaning|2",
		"User: actually the deep one",
		"SELECTED_SERVICE: 2|Deep Cleaning|4",
		"Bot: when would you like it?",
	)

	selected := ExtractSelectedService(history, catalog.Default())
	if selected == nil {
		t.Fatalf("expected a selected service")
	}
	if selected.ID != "2" || selected.Name != "Deep Cleaning" || selected.DurationHours != 4 {
		t.Fatalf("unexpected selection: %+v", selected)
	}
	if selected.Description == "" {
		t.Fatalf("expected description to be joined from the catalogue")
	}
}

func TestExtractSelectedServiceStopsAtResolution(t *testing.T) {
	history := entriesFromTexts(
		"SELECTED_SERVICE: 2|Deep Cleaning|4",
		"BOOKING_CONFIRMED",
		"User: hello again",
	)
	if got := ExtractSelectedService(history, catalog.Default()); got != nil {
		t.Fatalf("selection before a resolution marker must not leak, got %+v", got)
	}

	history = entriesFromTexts(
		"SELECTED_SERVICE: 2|Deep Cleaning|4",
		"BOOKING_CANCELLED",
	)
	if got := ExtractSelectedService(history, catalog.Default()); got != nil {
		t.Fatalf("cancelled session must hide the selection, got %+v", got)
	}
}

func TestExtractSelectedServiceSkipsMalformed(t *testing.T) {
	history := entriesFromTexts(
		"SELECTED_SERVICE: 1|Standard Cleaning|2",
		"SELECTED_SERVICE: garbage",
	)
	selected := ExtractSelectedService(history, catalog.Default())
	if selected == nil || selected.ID != "1" {
		t.Fatalf("malformed marker should be skipped, scan continues: %+v", selected)
	}
}

func TestExtractSelectedServiceSkipsUnknownID(t *testing.T) {
	history := entriesFromTexts("SELECTED_SERVICE: 99|Ghost Service|2")
	if got := ExtractSelectedService(history, catalog.Default()); got != nil {
		t.Fatalf("marker for a service outside the catalogue must not become a selection, got %+v", got)
	}

	// The scan keeps going past the unknown marker to an earlier valid one.
	history = entriesFromTexts(
		"SELECTED_SERVICE: 1|Standard Cleaning|3",
		"SELECTED_SERVICE: 99|Ghost Service|2",
	)
	selected := ExtractSelectedService(history, catalog.Default())
	if selected == nil {
		t.Fatal("expected the earlier valid selection")
	}
	if selected.ID != "1" || selected.Name != "Standard Cleaning" || selected.Description == "" {
		t.Fatalf("unexpected selection: %+v", selected)
	}
}

func TestExtractSelectedServiceEmptyHistory(t *testing.T) {
	if got := ExtractSelectedService(nil, catalog.Default()); got != nil {
		t.Fatalf("expected nil for empty history, got %+v", got)
	}
}

func TestExtractPendingAppointmentPicksNewest(t *testing.T) {
	history := entriesFromTexts(
		"PENDING_APPOINTMENT: 2026-09-10T10:00:00|2026-09-10T14:00:00|2|Deep Cleaning|desc",
		"User: no wait, the 15th",
		"PENDING_APPOINTMENT: 2026-09-15T10:00:00|2026-09-15T14:00:00|2|Deep Cleaning|desc",
	)
	pending := ExtractPendingAppointment(history)
	if pending == nil {
		t.Fatalf("expected a pending appointment")
	}
	if pending.StartTime.Day() != 15 {
		t.Fatalf("expected the newest proposal to win: %+v", pending)
	}
}

func TestExtractPendingAppointmentStopsAtResolution(t *testing.T) {
	history := entriesFromTexts(
		"PENDING_APPOINTMENT: 2026-09-10T10:00:00|2026-09-10T14:00:00|2|Deep Cleaning|desc",
		"BOOKING_CONFIRMED",
	)
	if got := ExtractPendingAppointment(history); got != nil {
		t.Fatalf("resolved session must hide the pending appointment, got %+v", got)
	}
}

func TestExtractPendingAppointmentSkipsMalformed(t *testing.T) {
	history := entriesFromTexts(
		"PENDING_APPOINTMENT: 2026-09-10T10:00:00|2026-09-10T14:00:00|2|Deep Cleaning|desc",
		"PENDING_APPOINTMENT: broken",
	)
	pending := ExtractPendingAppointment(history)
	if pending == nil || pending.ServiceID != "2" {
		t.Fatalf("malformed marker should be skipped, scan continues: %+v", pending)
	}
}
