// Package schedule implements the watering countdown the backend
// advances once per day. The client uses it to project workload and to
// annotate weather-affected plants; the server copy remains
// authoritative.
package schedule

import (
	"time"

	"github.com/greener/waterdesk/internal/model"
)

// DateFormat is the calendar-day granularity used by the countdown.
const DateFormat = "2006-01-02"

// Advance moves a plant's watering countdown forward for the given
// day. The countdown only advances once per calendar day, guarded by
// LastWateringUpdate. Rain resets the countdown to the full interval
// and marks the schedule weather-affected; otherwise the remaining
// days decrement, clamped at zero, and the plant becomes due when the
// countdown runs out. Returns true when the schedule changed.
func Advance(s *model.WateringSchedule, rained bool, today time.Time) bool {
	day := today.Format(DateFormat)

	if s.WaterDays <= 0 {
		s.WaterDays = model.DefaultWaterDays
		s.ActiveWaterDays = s.WaterDays
		s.LastWateringUpdate = day
		s.NeedsWatering = false
		s.WeatherAffected = false
		return true
	}

	if rained {
		s.ActiveWaterDays = s.WaterDays
		s.NeedsWatering = false
		s.WeatherAffected = true
		s.LastWateringUpdate = day
		return true
	}

	if s.LastWateringUpdate == day {
		return false
	}

	s.ActiveWaterDays--
	if s.ActiveWaterDays < 0 {
		s.ActiveWaterDays = 0
	}
	s.NeedsWatering = s.ActiveWaterDays <= 0
	s.WeatherAffected = false
	s.LastWateringUpdate = day
	return true
}

// ProjectDue returns how many of the given items would be due after n
// more dry days, assuming no watering happens in between. Items
// already due stay due.
func ProjectDue(items []model.ChecklistItem, n int) int {
	due := 0
	for i := range items {
		if items[i].NeedsWatering || items[i].DaysRemaining <= n {
			due++
		}
	}
	return due
}
