package model

import (
	"sort"
	"time"
)

// ContactMethod identifies how a plant was marked as watered.
type ContactMethod string

const (
	MethodManual  ContactMethod = "manual"
	MethodBarcode ContactMethod = "barcode"
	MethodGPS     ContactMethod = "gps"
)

// Location describes where a plant sits inside the business premises.
type Location struct {
	Section     string `json:"section,omitempty"`
	Aisle       string `json:"aisle,omitempty"`
	ShelfNumber string `json:"shelfNumber,omitempty"`
}

// Coordinates is a GPS position attached to a gps-method watering.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ChecklistItem is one plant on the business watering checklist.
type ChecklistItem struct {
	// ID is the plant's inventory identifier.
	ID string `json:"id"`

	// Name is the plant's common/display name.
	Name string `json:"name"`

	// ScientificName is the botanical name, when known.
	ScientificName string `json:"scientificName,omitempty"`

	// NeedsWatering reports whether the plant is due today.
	NeedsWatering bool `json:"needsWatering"`

	// DaysRemaining is how many days until the plant is due.
	DaysRemaining int `json:"daysRemaining"`

	// LastWatered is when the plant was last marked as watered.
	LastWatered *time.Time `json:"lastWatered,omitempty"`

	// Completed reports whether the plant has been handled this round.
	Completed bool `json:"completed"`

	// WeatherAffected is set when rain reset the watering countdown.
	WeatherAffected bool `json:"weatherAffected,omitempty"`

	// Location is the plant's position in the store, when recorded.
	Location *Location `json:"location,omitempty"`
}

// ChecklistSnapshot is the unit of cache persistence: the full checklist
// plus its aggregate counts and the time it was fetched. A snapshot is
// replaced wholesale on every successful fetch and patched in place
// between fetches by optimistic mutations.
type ChecklistSnapshot struct {
	Checklist          []ChecklistItem `json:"checklist"`
	TotalCount         int             `json:"totalCount"`
	NeedsWateringCount int             `json:"needsWateringCount"`
	CompletedCount     int             `json:"completedCount"`
	FetchedAt          time.Time       `json:"fetchedAt"`
}

// Recount recomputes NeedsWateringCount, CompletedCount, and TotalCount
// from the checklist items. The server-reported counts are not
// re-fetched after an optimistic mutation, so the client owns this
// invariant.
func (s *ChecklistSnapshot) Recount() {
	needs, completed := 0, 0
	for i := range s.Checklist {
		if s.Checklist[i].NeedsWatering {
			needs++
		}
		if s.Checklist[i].Completed {
			completed++
		}
	}
	s.NeedsWateringCount = needs
	s.CompletedCount = completed
	s.TotalCount = len(s.Checklist)
}

// Sort orders the checklist for display: plants needing watering first,
// then ascending days remaining, then by location section and aisle
// when both items carry a location. Equal items keep their relative
// order.
func (s *ChecklistSnapshot) Sort() {
	sort.SliceStable(s.Checklist, func(i, j int) bool {
		a, b := s.Checklist[i], s.Checklist[j]

		if a.NeedsWatering != b.NeedsWatering {
			return a.NeedsWatering
		}
		if a.DaysRemaining != b.DaysRemaining {
			return a.DaysRemaining < b.DaysRemaining
		}
		if a.Location != nil && b.Location != nil {
			if a.Location.Section != b.Location.Section {
				return a.Location.Section < b.Location.Section
			}
			if a.Location.Aisle != b.Location.Aisle {
				return a.Location.Aisle < b.Location.Aisle
			}
		}
		return false
	})
}

// Find returns a pointer to the item with the given plant ID, or nil.
func (s *ChecklistSnapshot) Find(plantID string) *ChecklistItem {
	for i := range s.Checklist {
		if s.Checklist[i].ID == plantID {
			return &s.Checklist[i]
		}
	}
	return nil
}

// RouteStep is one stop on the server-computed watering route. The
// ordering is opaque to the client and never recomputed here.
type RouteStep struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Location *Location `json:"location,omitempty"`
}

// OptimizedRoute is the server's suggested visiting order for plants
// that need watering.
type OptimizedRoute struct {
	Route         []RouteStep `json:"route"`
	TotalPlants   int         `json:"totalPlants"`
	EstimatedTime string      `json:"estimatedTime"`
}

// WeatherInfo is the current weather at the business location, used to
// annotate the checklist. Absence never blocks the checklist view.
type WeatherInfo struct {
	ConditionID int     `json:"conditionId"`
	Description string  `json:"description"`
	TempCelsius float64 `json:"tempCelsius"`
	Humidity    int     `json:"humidity"`
}

// Raining reports whether the weather condition counts as rain.
// Condition IDs follow the OpenWeatherMap convention: 2xx thunderstorm,
// 3xx drizzle, 5xx rain.
func (w *WeatherInfo) Raining() bool {
	if w == nil {
		return false
	}
	return w.ConditionID >= 200 && w.ConditionID < 600
}
