// Package notify composes watering reminder text. The wording matches
// the push notifications the backend sends, so what the terminal shows
// and what arrives on a phone read the same.
package notify

import (
	"fmt"
	"strings"

	"github.com/greener/waterdesk/internal/model"
)

// maxNamedPlants is how many plant names appear before the rest are
// summarized as a count.
const maxNamedPlants = 3

// ReminderText returns the watering reminder line for the plants that
// currently need watering. Returns "" when nothing is due.
func ReminderText(items []model.ChecklistItem) string {
	var due []string
	for i := range items {
		if !items[i].NeedsWatering {
			continue
		}
		name := items[i].Name
		if name == "" {
			name = items[i].ID
		}
		due = append(due, name)
	}

	switch {
	case len(due) == 0:
		return ""
	case len(due) == 1:
		return fmt.Sprintf("%s needs watering today.", due[0])
	case len(due) <= maxNamedPlants:
		return fmt.Sprintf("%s need watering today.", strings.Join(due, ", "))
	default:
		return fmt.Sprintf(
			"%s and %d more plants need watering today.",
			strings.Join(due[:maxNamedPlants], ", "),
			len(due)-maxNamedPlants,
		)
	}
}
