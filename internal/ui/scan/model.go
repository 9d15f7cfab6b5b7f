package scan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greener/waterdesk/internal/barcode"
	"github.com/greener/waterdesk/internal/store"
	"github.com/greener/waterdesk/internal/theme"
)

// AcceptedMsg is sent when a scanned code decodes to a plant. The app
// routes it into the mark-as-watered flow.
type AcceptedMsg struct {
	Scan *barcode.Scan

	// Raw is the original scanned string, kept for the scan log.
	Raw string
}

// CloseMsg is sent when the user leaves the scan view.
type CloseMsg struct{}

// Model is the scan view: a text input fed by a keyboard-wedge scanner
// (or pasted codes), plus recent scan history.
type Model struct {
	input   textinput.Model
	history []store.ScanRecord
	errText string
	width   int
	height  int
}

// New creates a scan view.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "scan or paste a plant code..."
	ti.Prompt = "▸ "
	ti.Width = width - 4

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Focus puts the input into focus for the next scan.
func (m *Model) Focus() tea.Cmd {
	m.errText = ""
	m.input.Reset()
	return m.input.Focus()
}

// SetHistory replaces the displayed scan history.
func (m *Model) SetHistory(recs []store.ScanRecord) {
	m.history = recs
}

// Update handles messages for the scan view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CloseMsg{} }

		case "enter":
			raw := m.input.Value()
			m.input.Reset()

			scanned, err := barcode.Parse(raw)
			if err != nil {
				// Validation failures surface immediately and are
				// never retried automatically.
				m.errText = err.Error()
				return m, nil
			}

			m.errText = ""
			return m, func() tea.Msg {
				return AcceptedMsg{Scan: scanned, Raw: raw}
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the scan input and recent history.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Scan a plant"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.errText != "" {
		b.WriteString(theme.ErrorStyle.Render(m.errText))
		b.WriteString("\n")
	}

	if len(m.history) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render("Recent scans"))
		b.WriteString("\n")
		for _, rec := range m.history {
			line := fmt.Sprintf(
				"%s  %s%s",
				rec.ScannedAt.Local().Format("Jan 2 15:04"),
				rec.PlantID,
				theme.MethodStyle(rec.Method).Render(rec.Method),
			)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(1, 2).
		Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 4
}
