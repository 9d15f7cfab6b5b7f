package notify

import (
	"testing"

	"github.com/greener/waterdesk/internal/model"
)

func due(names ...string) []model.ChecklistItem {
	items := make([]model.ChecklistItem, len(names))
	for i, n := range names {
		items[i] = model.ChecklistItem{ID: "p" + n, Name: n, NeedsWatering: true}
	}
	return items
}

func TestReminderText(t *testing.T) {
	tests := []struct {
		name  string
		items []model.ChecklistItem
		want  string
	}{
		{
			name:  "nothing due",
			items: []model.ChecklistItem{{Name: "Monstera", NeedsWatering: false}},
			want:  "",
		},
		{
			name:  "single plant",
			items: due("Monstera"),
			want:  "Monstera needs watering today.",
		},
		{
			name:  "three plants joined",
			items: due("Monstera", "Ficus", "Pothos"),
			want:  "Monstera, Ficus, Pothos need watering today.",
		},
		{
			name:  "overflow summarized",
			items: due("Monstera", "Ficus", "Pothos", "Aloe", "Basil"),
			want:  "Monstera, Ficus, Pothos and 2 more plants need watering today.",
		},
		{
			name: "skips plants not due",
			items: []model.ChecklistItem{
				{Name: "Monstera", NeedsWatering: true},
				{Name: "Ficus", NeedsWatering: false},
			},
			want: "Monstera needs watering today.",
		},
		{
			name:  "falls back to id when unnamed",
			items: []model.ChecklistItem{{ID: "plant-7", NeedsWatering: true}},
			want:  "plant-7 needs watering today.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReminderText(tt.items); got != tt.want {
				t.Errorf("ReminderText() = %q, want %q", got, tt.want)
			}
		})
	}
}
