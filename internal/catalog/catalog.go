package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// ServiceOffering is a bookable cleaning service. The catalogue is static and
// loaded once at process start.
type ServiceOffering struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	DurationHours int    `json:"duration_hours"`
}

// Catalog holds the service offerings in a stable numeric-ID order.
type Catalog struct {
	services []ServiceOffering
	byID     map[string]ServiceOffering
}

// New builds a catalogue from the given offerings.
func New(services []ServiceOffering) *Catalog {
	sorted := make([]ServiceOffering, len(services))
	copy(sorted, services)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[string]ServiceOffering, len(sorted))
	for _, s := range sorted {
		byID[s.ID] = s
	}
	return &Catalog{services: sorted, byID: byID}
}

// Default returns the reference five-service catalogue.
func Default() *Catalog {
	return New([]ServiceOffering{
		{
			ID:            "1",
			Name:          "Standard Cleaning",
			Description:   "Basic cleaning of all rooms, dusting, vacuuming, and surface wiping",
			DurationHours: 2,
		},
		{
			ID:            "2",
			Name:          "Deep Cleaning",
			Description:   "Thorough cleaning including kitchen appliances, behind furniture, scrubbing bathrooms, and detailed dusting",
			DurationHours: 4,
		},
		{
			ID:            "3",
			Name:          "Move-in/Move-out Cleaning",
			Description:   "Complete cleaning for vacant properties, including inside cabinets, appliances, and deep scrubbing",
			DurationHours: 6,
		},
		{
			ID:            "4",
			Name:          "Post-Construction Cleaning",
			Description:   "Removal of construction debris, dust, and thorough cleaning of all surfaces",
			DurationHours: 8,
		},
		{
			ID:            "5",
			Name:          "Office Cleaning",
			Description:   "Professional cleaning of office spaces, desks, floors, and common areas",
			DurationHours: 3,
		},
	})
}

// Get returns the offering with the given ID.
func (c *Catalog) Get(id string) (ServiceOffering, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// List returns all offerings in stable order.
func (c *Catalog) List() []ServiceOffering {
	out := make([]ServiceOffering, len(c.services))
	copy(out, c.services)
	return out
}

// Listing renders the numbered catalogue used in greeting replies.
func (c *Catalog) Listing() string {
	var b strings.Builder
	for _, s := range c.services {
		fmt.Fprintf(&b, "%s. **%s** (%d hours)\n   - %s\n\n", s.ID, s.Name, s.DurationHours, s.Description)
	}
	return b.String()
}

// CompactListing renders the short one-line-per-service list used in the
// deterministic fallback reply.
func (c *Catalog) CompactListing() string {
	lines := make([]string, 0, len(c.services))
	for _, s := range c.services {
		lines = append(lines, fmt.Sprintf("%s. %s (%dh)", s.ID, s.Name, s.DurationHours))
	}
	return strings.Join(lines, "\n")
}
