package setup

import (
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/greener/waterdesk/internal/credential"
	"github.com/greener/waterdesk/internal/model"
	"github.com/greener/waterdesk/internal/theme"
)

// DoneMsg is sent when the setup form has been saved. The app rebuilds
// the API client and sync controller from the new values.
type DoneMsg struct {
	Config *model.AppConfig
	Token  string
}

// CancelMsg is sent when the user abandons setup.
type CancelMsg struct{}

// savedMsg reports the outcome of persisting config and token.
type savedMsg struct {
	err error
}

// Model is the first-run / reconfiguration form.
type Model struct {
	form       *huh.Form
	cfg        *model.AppConfig
	configPath string

	// Field bindings for huh.
	formBaseURL    string
	formBusinessID string
	formEmail      string
	formUserType   string
	formToken      string

	errText string
	width   int
	height  int
}

// New creates a setup form pre-filled from the current config.
func New(cfg *model.AppConfig, configPath string, width, height int) Model {
	m := Model{
		cfg:            cfg,
		configPath:     configPath,
		formBaseURL:    cfg.Backend.BaseURL,
		formBusinessID: cfg.Identity.BusinessID,
		formEmail:      cfg.Identity.Email,
		formUserType:   cfg.Identity.UserType,
		width:          width,
		height:         height,
	}
	m.form = m.buildForm()
	return m
}

// buildForm constructs the huh form bound to the model's fields.
func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Root of the business API").
				Value(&m.formBaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Business ID").
				Value(&m.formBusinessID).
				Validate(required("business ID")),
			huh.NewInput().
				Title("Email").
				Value(&m.formEmail).
				Validate(validateEmail),
			huh.NewSelect[string]().
				Title("Account type").
				Options(
					huh.NewOption("Business", model.UserTypeBusiness),
					huh.NewOption("Customer", model.UserTypeCustomer),
				).
				Value(&m.formUserType),
			huh.NewInput().
				Title("API token (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&m.formToken),
		),
	)
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the setup view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	if saved, ok := msg.(savedMsg); ok {
		if saved.err != nil {
			m.errText = saved.err.Error()
			return m, nil
		}
		cfg := m.cfg
		token := m.formToken
		return m, func() tea.Msg {
			return DoneMsg{Config: cfg, Token: token}
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.save()
	}

	return m, cmd
}

// save persists the form values to config and the token to the
// system keyring.
func (m *Model) save() tea.Cmd {
	m.cfg.Backend.BaseURL = strings.TrimRight(m.formBaseURL, "/")
	m.cfg.Identity.BusinessID = strings.TrimSpace(m.formBusinessID)
	m.cfg.Identity.Email = strings.TrimSpace(m.formEmail)
	m.cfg.Identity.UserType = m.formUserType

	cfg := m.cfg
	path := m.configPath
	token := m.formToken

	return func() tea.Msg {
		if err := model.SaveConfig(path, cfg); err != nil {
			return savedMsg{err: err}
		}
		if token != "" {
			if err := credential.Set(credential.TokenKey, token); err != nil {
				return savedMsg{err: fmt.Errorf("storing token: %w", err)}
			}
		}
		return savedMsg{}
	}
}

// View renders the setup form.
func (m Model) View() string {
	out := m.form.View()
	if m.errText != "" {
		out += "\n" + theme.ErrorStyle.Render(m.errText)
	}
	return out
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// required returns a validator rejecting empty input.
func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// validateURL checks the backend URL is absolute http(s).
func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("enter a full http(s) URL")
	}
	return nil
}

// validateEmail is a light sanity check, not RFC validation.
func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, "@") {
		return fmt.Errorf("enter a valid email")
	}
	return nil
}
