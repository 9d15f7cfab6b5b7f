package checklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greener/waterdesk/internal/model"
	"github.com/greener/waterdesk/internal/theme"
)

// PlantItem wraps a model.ChecklistItem so it can be used in a
// bubbles/list.
type PlantItem struct {
	Item model.ChecklistItem
}

// FilterValue returns the string used for fuzzy filtering.
func (p PlantItem) FilterValue() string { return p.Item.Name }

// Title returns the plant name for the list.
func (p PlantItem) Title() string { return p.Item.Name }

// Description returns a short summary line for the list.
func (p PlantItem) Description() string {
	parts := []string{wateringLabel(p.Item)}
	if loc := locationLabel(p.Item.Location); loc != "" {
		parts = append(parts, loc)
	}
	if p.Item.LastWatered != nil {
		parts = append(parts, "watered "+relativeTime(*p.Item.LastWatered))
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for checklist rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single checklist row: status glyph, name, urgency
// label, location.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(PlantItem)
	if !ok {
		return
	}

	it := p.Item
	isSelected := index == m.Index()

	var glyph string
	switch {
	case it.Completed:
		glyph = "✓"
	case it.NeedsWatering:
		glyph = "●"
	default:
		glyph = "○"
	}

	status := theme.WateringStyle(it.NeedsWatering, it.DaysRemaining).
		Render(wateringLabel(it))

	name := it.Name
	if name == "" {
		name = it.ID
	}
	if it.ScientificName != "" {
		name += " " + theme.HelpStyle.Render("("+it.ScientificName+")")
	}

	line := fmt.Sprintf("%s %s  %s", glyph, name, status)
	if loc := locationLabel(it.Location); loc != "" {
		line += "  " + theme.HelpStyle.Render(loc)
	}
	if it.WeatherAffected {
		line += "  " + lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("rain")
	}

	if isSelected {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
	} else {
		fmt.Fprint(w, theme.ListItemStyle.Render(line))
	}
}

// wateringLabel describes the plant's urgency.
func wateringLabel(it model.ChecklistItem) string {
	switch {
	case it.Completed:
		return "done"
	case it.NeedsWatering:
		return "water now"
	case it.DaysRemaining == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", it.DaysRemaining)
	}
}

// locationLabel renders a compact location string like "A/3 shelf 2".
func locationLabel(loc *model.Location) string {
	if loc == nil {
		return ""
	}
	var parts []string
	if loc.Section != "" {
		s := loc.Section
		if loc.Aisle != "" {
			s += "/" + loc.Aisle
		}
		parts = append(parts, s)
	} else if loc.Aisle != "" {
		parts = append(parts, loc.Aisle)
	}
	if loc.ShelfNumber != "" {
		parts = append(parts, "shelf "+loc.ShelfNumber)
	}
	return strings.Join(parts, " ")
}

// relativeTime renders a time as a compact "2h ago" style string.
func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
