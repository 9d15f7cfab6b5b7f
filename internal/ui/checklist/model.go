package checklist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greener/waterdesk/internal/keys"
	"github.com/greener/waterdesk/internal/model"
	"github.com/greener/waterdesk/internal/theme"
)

// WaterRequestMsg is sent when the user asks to mark the selected
// plant as watered.
type WaterRequestMsg struct {
	PlantID string
	Name    string
}

// LabelRequestMsg is sent when the user asks for a plant's printable
// barcode label link.
type LabelRequestMsg struct {
	PlantID string
}

// Model is the checklist list view.
type Model struct {
	list          list.Model
	keys          *keys.KeyMap
	snapshot      *model.ChecklistSnapshot
	showCompleted bool
	stale         bool
	width         int
	height        int
}

// New creates a checklist view.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Watering Checklist"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:          l,
		keys:          k,
		showCompleted: true,
		width:         width,
		height:        height,
	}
}

// SetSnapshot replaces the displayed checklist. The snapshot arrives
// already sorted by the sync controller; the view never reorders it.
func (m *Model) SetSnapshot(snap *model.ChecklistSnapshot) tea.Cmd {
	m.snapshot = snap
	return m.rebuild()
}

// SetStale toggles the stale-data indicator, shown while only cached
// data is available or after a failed silent refresh.
func (m *Model) SetStale(stale bool) {
	m.stale = stale
}

// ToggleShowCompleted flips whether completed plants are listed.
func (m *Model) ToggleShowCompleted() tea.Cmd {
	m.showCompleted = !m.showCompleted
	return m.rebuild()
}

// rebuild refreshes the list items from the held snapshot.
func (m *Model) rebuild() tea.Cmd {
	if m.snapshot == nil {
		return m.list.SetItems(nil)
	}

	items := make([]list.Item, 0, len(m.snapshot.Checklist))
	for _, it := range m.snapshot.Checklist {
		if !m.showCompleted && it.Completed && !it.NeedsWatering {
			continue
		}
		items = append(items, PlantItem{Item: it})
	}
	return m.list.SetItems(items)
}

// SelectedPlant returns the currently highlighted plant.
func (m Model) SelectedPlant() (model.ChecklistItem, bool) {
	p, ok := m.list.SelectedItem().(PlantItem)
	if !ok {
		return model.ChecklistItem{}, false
	}
	return p.Item, true
}

// Update handles messages for the checklist view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Water):
			item, ok := m.SelectedPlant()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return WaterRequestMsg{PlantID: item.ID, Name: item.Name}
			}

		case key.Matches(msg, m.keys.Label):
			item, ok := m.SelectedPlant()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return LabelRequestMsg{PlantID: item.ID}
			}

		case key.Matches(msg, m.keys.ShowDone):
			return m, m.ToggleShowCompleted()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the checklist view.
func (m Model) View() string {
	if m.snapshot == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading checklist...")
	}

	header := m.summaryLine()
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View())
}

// summaryLine renders the aggregate counts and cache-age banner.
func (m Model) summaryLine() string {
	s := m.snapshot
	line := fmt.Sprintf(
		"%d plants | %d need watering | %d done",
		s.TotalCount, s.NeedsWateringCount, s.CompletedCount,
	)

	if m.stale {
		age := time.Since(s.FetchedAt).Round(time.Minute)
		line += theme.ErrorStyle.Render(
			fmt.Sprintf("  [cached %s ago]", age),
		)
	}

	return theme.HelpStyle.Render(line)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
