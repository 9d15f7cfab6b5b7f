package help

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greener/waterdesk/internal/keys"
	"github.com/greener/waterdesk/internal/theme"
)

// Model renders the full keybinding reference.
type Model struct {
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a help view.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Update handles messages for the help view.
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the grouped keybindings.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")

	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			b.WriteString(
				lipgloss.NewStyle().Width(12).Bold(true).
					Render(binding.Help().Key),
			)
			b.WriteString(binding.Help().Desc)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return theme.PanelStyle.Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
