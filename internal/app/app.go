package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greener/waterdesk/internal/api"
	"github.com/greener/waterdesk/internal/credential"
	"github.com/greener/waterdesk/internal/keys"
	"github.com/greener/waterdesk/internal/model"
	"github.com/greener/waterdesk/internal/notify"
	"github.com/greener/waterdesk/internal/store"
	appsync "github.com/greener/waterdesk/internal/sync"
	"github.com/greener/waterdesk/internal/ui"
	"github.com/greener/waterdesk/internal/ui/checklist"
	helpview "github.com/greener/waterdesk/internal/ui/help"
	routeview "github.com/greener/waterdesk/internal/ui/route"
	scanview "github.com/greener/waterdesk/internal/ui/scan"
	setupview "github.com/greener/waterdesk/internal/ui/setup"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewChecklist ViewState = iota
	ViewRoute
	ViewScan
	ViewSetup
	ViewHelp
)

// scanHistoryMsg carries recent scans for the scan view.
type scanHistoryMsg struct {
	scans []store.ScanRecord
}

// Model is the root Bubble Tea model that manages view routing, the
// sync controller, and access to the persistence layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        *store.SQLiteStore
	cfg          *model.AppConfig
	configPath   string
	log          *slog.Logger
	keys         *keys.KeyMap

	client     *api.Client
	controller *appsync.Controller

	checklistView checklist.Model
	routeView     routeview.Model
	scanView      scanview.Model
	setupView     setupview.Model
	helpView      helpview.Model

	weather   *model.WeatherInfo
	reminder  string
	statusMsg string
	errMsg    string
	ready     bool
}

// New creates the root application model. When the config carries no
// usable identity, the app starts in the setup form.
func New(s *store.SQLiteStore, cfg *model.AppConfig, configPath string, logger *slog.Logger) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		currentView:   ViewChecklist,
		store:         s,
		cfg:           cfg,
		configPath:    configPath,
		log:           logger,
		keys:          k,
		checklistView: checklist.New(k, 80, 24),
		routeView:     routeview.New(80, 24),
		scanView:      scanview.New(80, 24),
		setupView:     setupview.New(cfg, configPath, 80, 24),
		helpView:      helpview.New(k, 80, 24),
	}

	session := buildSession(cfg)
	if !session.Valid() {
		m.currentView = ViewSetup
		return m
	}

	m.connect(session)
	return m
}

// buildSession assembles the request identity from config and the
// system keyring. A missing token is fine; a keyring error only costs
// the Authorization header.
func buildSession(cfg *model.AppConfig) model.Session {
	token, err := credential.Get(credential.TokenKey)
	if err != nil {
		token = ""
	}
	return model.Session{
		BusinessID: cfg.Identity.BusinessID,
		UserEmail:  cfg.Identity.Email,
		UserType:   cfg.Identity.UserType,
		Token:      token,
	}
}

// connect builds the API client and sync controller for a session.
func (m *Model) connect(session model.Session) {
	retry := api.RetryPolicy{
		MaxAttempts: m.cfg.Backend.Retry.MaxAttempts,
		BaseDelay:   time.Duration(m.cfg.Backend.Retry.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(m.cfg.Backend.Retry.MaxDelayMS) * time.Millisecond,
	}

	m.client = api.NewClient(
		m.cfg.Backend.BaseURL,
		session,
		time.Duration(m.cfg.Backend.TimeoutSec)*time.Second,
		retry,
	)

	m.controller = appsync.New(
		m.store, m.client, session.BusinessID, m.log,
		appsync.WithInterval(time.Duration(m.cfg.Display.RefreshIntervalSec)*time.Second),
		appsync.WithAutoRefresh(m.cfg.Display.AutoRefresh),
	)
}

// Init starts the sync controller, or the setup form on first run.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewSetup {
		return m.setupView.Init()
	}
	return tea.Batch(m.controller.Start(), m.persistIdentity())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.checklistView.SetSize(w, h)
		m.routeView.SetSize(w, h)
		m.scanView.SetSize(w, h)
		m.setupView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to the active view so huh forms can lay out.
		return m.updateActiveView(msg)

	case appsync.ChecklistMsg:
		cmd := m.checklistView.SetSnapshot(msg.Snapshot)
		m.checklistView.SetStale(msg.FromCache)
		m.reminder = notify.ReminderText(msg.Snapshot.Checklist)
		if !msg.FromCache {
			m.errMsg = ""
		}
		return m, tea.Batch(cmd, m.controller.WaitForNext())

	case appsync.FetchErrorMsg:
		if msg.Silent {
			// Logged by the controller; just flag staleness.
			m.checklistView.SetStale(true)
		} else {
			m.errMsg = fmt.Sprintf("Couldn't load checklist: %v (press r to try again)", msg.Err)
		}
		return m, m.controller.WaitForNext()

	case appsync.RouteMsg:
		m.routeView.SetRoute(msg.Route)
		return m, m.controller.WaitForNext()

	case appsync.WeatherMsg:
		m.weather = msg.Weather
		return m, m.controller.WaitForNext()

	case appsync.WateredMsg:
		var cmd tea.Cmd
		if msg.Snapshot != nil {
			cmd = m.checklistView.SetSnapshot(msg.Snapshot)
			m.reminder = notify.ReminderText(msg.Snapshot.Checklist)
		}
		m.statusMsg = fmt.Sprintf("Marked %s as watered", msg.PlantID)
		m.errMsg = ""
		return m, tea.Batch(cmd, m.controller.WaitForNext())

	case appsync.MarkFailedMsg:
		m.errMsg = fmt.Sprintf("Couldn't mark %s watered: %v (press w to try again)", msg.PlantID, msg.Err)
		return m, m.controller.WaitForNext()

	case checklist.WaterRequestMsg:
		m.statusMsg = fmt.Sprintf("Watering %s...", msg.Name)
		return m, m.controller.MarkWatered(msg.PlantID, model.MethodManual, nil)

	case checklist.LabelRequestMsg:
		m.statusMsg = "Label: " + m.client.BarcodePDFURL(msg.PlantID)
		return m, nil

	case scanview.AcceptedMsg:
		m.currentView = ViewChecklist
		m.statusMsg = fmt.Sprintf("Scanned %s", msg.Scan.ID)
		return m, tea.Batch(
			m.logScan(msg),
			m.controller.MarkWatered(msg.Scan.ID, model.MethodBarcode, nil),
		)

	case scanview.CloseMsg:
		m.currentView = ViewChecklist
		return m, nil

	case scanHistoryMsg:
		m.scanView.SetHistory(msg.scans)
		return m, nil

	case setupview.DoneMsg:
		m.cfg = msg.Config
		if m.controller != nil {
			m.controller.Stop()
		}
		session := buildSession(m.cfg)
		if msg.Token != "" {
			session.Token = msg.Token
		}
		m.connect(session)
		m.currentView = ViewChecklist
		return m, tea.Batch(m.controller.Start(), m.persistIdentity())

	case setupview.CancelMsg:
		// Without an identity there is nothing else to show.
		if m.controller == nil {
			return m, tea.Quit
		}
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if handled, model, cmd := m.handleGlobalKeys(msg); handled {
			return model, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of view. Keys
// are not intercepted while a text input owns focus (scan, setup).
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.controller != nil {
			m.controller.Stop()
		}
		return true, m, tea.Quit
	}

	if m.currentView == ViewScan || m.currentView == ViewSetup {
		return false, m, nil
	}

	switch msg.String() {
	case "q":
		if m.controller != nil {
			m.controller.Stop()
		}
		return true, m, tea.Quit

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return true, m, nil

	case "esc":
		if m.currentView != ViewChecklist {
			m.currentView = ViewChecklist
			return true, m, nil
		}

	case "s":
		m.previousView = m.currentView
		m.currentView = ViewScan
		return true, m, tea.Batch(m.scanView.Focus(), m.loadScanHistory())

	case "o":
		m.previousView = m.currentView
		m.currentView = ViewRoute
		return true, m, nil

	case "r":
		m.statusMsg = "Refreshing..."
		return true, m, m.controller.Refresh()

	case "a":
		enabled := !m.controller.AutoRefresh()
		m.controller.SetAutoRefresh(enabled)
		m.cfg.Display.AutoRefresh = enabled
		if enabled {
			m.statusMsg = "Auto-refresh on"
		} else {
			m.statusMsg = "Auto-refresh off"
		}
		return true, m, m.persistAutoRefresh(enabled)

	case "c":
		m.previousView = m.currentView
		m.currentView = ViewSetup
		m.setupView = setupview.New(m.cfg, m.configPath, m.layout.ContentWidth(), m.layout.ContentHeight())
		return true, m, m.setupView.Init()
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewChecklist:
		m.checklistView, cmd = m.checklistView.Update(msg)
	case ViewRoute:
		m.routeView, cmd = m.routeView.Update(msg)
	case ViewScan:
		m.scanView, cmd = m.scanView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Waterdesk", m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewChecklist:
		return m.checklistView.View()
	case ViewRoute:
		return m.routeView.View()
	case ViewScan:
		return m.scanView.View()
	case ViewSetup:
		return m.setupView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// headerStatus summarizes weather and refresh mode in the title bar.
func (m Model) headerStatus() string {
	status := ""
	if m.weather != nil {
		status = m.weather.Description
		if m.weather.Raining() {
			status += " (rain)"
		}
	}
	if m.controller != nil && !m.controller.AutoRefresh() {
		if status != "" {
			status += " | "
		}
		status += "auto-refresh off"
	}
	return status
}

// statusLine picks what the bottom bar shows: errors win, then the
// watering reminder, then transient status, then key hints.
func (m Model) statusLine() string {
	if m.errMsg != "" {
		return m.errMsg
	}
	if m.currentView == ViewChecklist && m.reminder != "" {
		return m.reminder
	}
	if m.statusMsg != "" {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewScan:
		return "enter decode | esc back"
	case ViewRoute:
		return "esc back"
	case ViewSetup:
		return "enter next | esc cancel"
	case ViewHelp:
		return "? close help"
	default:
		return "w water | s scan | o route | r refresh | ? help | q quit"
	}
}

// logScan records an accepted scan in the local store.
func (m Model) logScan(msg scanview.AcceptedMsg) tea.Cmd {
	s := m.store
	logger := m.log
	return func() tea.Msg {
		err := s.LogScan(context.Background(), store.ScanRecord{
			PlantID: msg.Scan.ID,
			RawCode: msg.Raw,
			Method:  string(model.MethodBarcode),
		})
		if err != nil {
			logger.Warn("logging scan", "error", err)
		}
		return nil
	}
}

// loadScanHistory fetches recent scans for the scan view.
func (m Model) loadScanHistory() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		scans, err := s.GetRecentScans(context.Background(), 10)
		if err != nil {
			return scanHistoryMsg{}
		}
		return scanHistoryMsg{scans: scans}
	}
}

// persistIdentity mirrors the active identity into the local settings
// table, matching what the mobile app keeps on device.
func (m Model) persistIdentity() tea.Cmd {
	s := m.store
	cfg := m.cfg
	logger := m.log
	return func() tea.Msg {
		ctx := context.Background()
		pairs := map[string]string{
			store.SettingBusinessID: cfg.Identity.BusinessID,
			store.SettingUserEmail:  cfg.Identity.Email,
			store.SettingUserType:   cfg.Identity.UserType,
		}
		for k, v := range pairs {
			if err := s.SetSetting(ctx, k, v); err != nil {
				logger.Warn("persisting setting", "key", k, "error", err)
			}
		}
		return nil
	}
}

// persistAutoRefresh stores the auto-refresh preference flag.
func (m Model) persistAutoRefresh(enabled bool) tea.Cmd {
	s := m.store
	logger := m.log
	value := "false"
	if enabled {
		value = "true"
	}
	return func() tea.Msg {
		if err := s.SetSetting(context.Background(), store.SettingAutoRefresh, value); err != nil {
			logger.Warn("persisting auto-refresh flag", "error", err)
		}
		return nil
	}
}
