package conversation

import "github.com/smartcleanhq/cleaning-ai-platform/internal/catalog"

// ExtractSelectedService reconstructs the latest selected-service fact from a
// chronological history. The scan runs newest to oldest; the first resolution
// marker ends the search, so a confirmed or cancelled booking hides every
// earlier selection. Malformed marker payloads are skipped, as are markers
// naming a service the catalogue no longer carries.
func ExtractSelectedService(history []Entry, cat *catalog.Catalog) *SelectedService {
	for i := len(history) - 1; i >= 0; i-- {
		text := history[i].Text
		if isResolutionMarker(text) {
			return nil
		}
		selected, ok := parseSelectedServiceMarker(text)
		if !ok {
			continue
		}
		if cat != nil {
			offering, found := cat.Get(selected.ID)
			if !found {
				continue
			}
			selected.Description = offering.Description
		}
		return &selected
	}
	return nil
}

// ExtractPendingAppointment reconstructs the latest pending-appointment fact,
// with the same backward scan and resolution-marker cutoff.
func ExtractPendingAppointment(history []Entry) *PendingAppointment {
	for i := len(history) - 1; i >= 0; i-- {
		text := history[i].Text
		if isResolutionMarker(text) {
			return nil
		}
		if pending, ok := parsePendingAppointmentMarker(text); ok {
			return &pending
		}
	}
	return nil
}
