package model

// DefaultWaterDays is the watering interval assumed for plants that
// have no schedule recorded yet.
const DefaultWaterDays = 7

// WateringSchedule is the per-plant countdown the backend maintains.
// ActiveWaterDays ticks down once per calendar day; the plant is due
// when it reaches zero. Rain resets the countdown to WaterDays.
type WateringSchedule struct {
	// WaterDays is the nominal interval between waterings.
	WaterDays int `json:"waterDays"`

	// ActiveWaterDays is the remaining days in the current countdown.
	ActiveWaterDays int `json:"activeWaterDays"`

	// LastWatered is the date the plant was last watered, if ever.
	LastWatered string `json:"lastWatered,omitempty"`

	// LastWateringUpdate is the date (YYYY-MM-DD) the countdown was
	// last advanced; guards against advancing twice in one day.
	LastWateringUpdate string `json:"lastWateringUpdate"`

	// NeedsWatering is true when the countdown has run out.
	NeedsWatering bool `json:"needsWatering"`

	// WeatherAffected is true when rain, not watering, reset the
	// countdown.
	WeatherAffected bool `json:"weatherAffected"`
}
