package route

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greener/waterdesk/internal/model"
	"github.com/greener/waterdesk/internal/theme"
)

// Model displays the server-computed watering route. The ordering is
// opaque to the client: steps are shown exactly as received.
type Model struct {
	route  *model.OptimizedRoute
	width  int
	height int
}

// New creates a route view.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// SetRoute replaces the displayed route.
func (m *Model) SetRoute(r *model.OptimizedRoute) {
	m.route = r
}

// HasRoute reports whether a route has been received.
func (m Model) HasRoute() bool {
	return m.route != nil
}

// Update handles messages for the route view.
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the route steps in order.
func (m Model) View() string {
	if m.route == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No route yet.\nA route is computed once plants need watering.")
	}

	var b strings.Builder

	title := fmt.Sprintf(
		"Optimized route: %d plants, est. %s",
		m.route.TotalPlants, m.route.EstimatedTime,
	)
	b.WriteString(theme.HeaderStyle.Render(title))
	b.WriteString("\n\n")

	for i, step := range m.route.Route {
		name := step.Name
		if name == "" {
			name = step.ID
		}
		line := fmt.Sprintf("%2d. %s", i+1, name)
		if step.Location != nil && step.Location.Section != "" {
			loc := step.Location.Section
			if step.Location.Aisle != "" {
				loc += "/" + step.Location.Aisle
			}
			line += "  " + theme.HelpStyle.Render(loc)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return theme.PanelStyle.Width(m.width - 4).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
