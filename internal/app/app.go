package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tagbot/internal/lookup"
	"github.com/nhle/tagbot/internal/matcher"
	"github.com/nhle/tagbot/internal/model"
	"github.com/nhle/tagbot/internal/respond"
	"github.com/nhle/tagbot/internal/store"
	"github.com/nhle/tagbot/internal/ui"
	"github.com/nhle/tagbot/internal/ui/console"
	"github.com/nhle/tagbot/internal/ui/settings"
	"github.com/nhle/tagbot/internal/ui/tagform"
	"github.com/nhle/tagbot/internal/workflow"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewConsole ViewState = iota
	ViewTagForm
	ViewSettings
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and the lifecycle of the matching dispatcher.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	ready       bool

	store      *store.SQLiteStore
	cfg        *model.AppConfig
	cfgPath    string
	keys       *KeyMap
	dispatcher *respond.Dispatcher
	controller *workflow.Controller

	consoleView  console.Model
	tagFormView  tagform.Model
	settingsView settings.Model
}

// New creates the root application model over an opened store.
func New(s *store.SQLiteStore, cfg *model.AppConfig, cfgPath string) Model {
	keys := DefaultKeyMap()
	ctrl := workflow.New(s)
	disp := respond.New(matcher.New(s))

	consoleView := console.New(
		s,
		lookup.New(s),
		ctrl,
		disp,
		keys,
		cfg.Identity.ServerID,
		cfg.Identity.AuthorID,
		80, 24,
	)
	consoleView.SetTriggerMode(model.MatchType(cfg.Matcher.TriggerMode))

	return Model{
		currentView:  ViewConsole,
		store:        s,
		cfg:          cfg,
		cfgPath:      cfgPath,
		keys:         keys,
		dispatcher:   disp,
		controller:   ctrl,
		consoleView:  consoleView,
		tagFormView:  tagform.New(ctrl, 80, 24),
		settingsView: settings.New(80, 24),
	}
}

// Init starts the matcher dispatcher subscription.
func (m Model) Init() tea.Cmd {
	return m.dispatcher.Start()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.consoleView.SetSize(contentWidth, contentHeight)
		m.tagFormView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		// Forward to the active view so huh forms can calculate layout.
		return m.updateActiveView(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.dispatcher.Stop()
			return m, tea.Quit
		}
		if m.currentView == ViewConsole && key.Matches(msg, m.keys.Settings) {
			m.currentView = ViewSettings
			return m, m.settingsView.Start(*m.cfg)
		}
		return m.updateActiveView(msg)

	case respond.ReplyMsg:
		if msg.Err != nil {
			m.consoleView.AddError("The autoresponder hit a storage error.")
		} else {
			m.consoleView.AddBotReply(msg.Content)
		}
		return m, m.dispatcher.WaitForNextReply()

	case console.OpenCreateFormMsg:
		m.currentView = ViewTagForm
		return m, m.tagFormView.StartCreate(msg.Session)

	case console.OpenEditFormMsg:
		m.currentView = ViewTagForm
		return m, m.tagFormView.StartEdit(msg.Session)

	case console.ServerChangedMsg:
		m.cfg.Identity.ServerID = msg.ServerID
		return m, nil

	case tagform.TagSubmittedMsg:
		m.currentView = ViewConsole
		res := msg.Result
		switch res.Outcome {
		case workflow.OutcomeCreated, workflow.OutcomeUpdated:
			m.consoleView.AddInfo(res.Message())
		default:
			m.consoleView.AddError(res.Message())
		}
		return m, nil

	case tagform.TagFormCancelMsg:
		m.currentView = ViewConsole
		return m, nil

	case settings.SavedMsg:
		m.currentView = ViewConsole
		return m, m.applySettings(msg)

	case settings.CancelMsg:
		m.currentView = ViewConsole
		return m, nil
	}

	return m.updateActiveView(msg)
}

// applySettings threads the saved configuration through the running
// components and persists it.
func (m *Model) applySettings(msg settings.SavedMsg) tea.Cmd {
	cfg := msg.Config
	*m.cfg = cfg

	m.store.SetCascadeDelete(cfg.Matcher.CascadeDelete)
	m.consoleView.SetIdentity(cfg.Identity.ServerID, cfg.Identity.AuthorID)
	m.consoleView.SetTriggerMode(model.MatchType(cfg.Matcher.TriggerMode))

	if err := model.SaveConfig(m.cfgPath, m.cfg); err != nil {
		m.consoleView.AddError("Settings applied but not saved to disk.")
	} else {
		m.consoleView.AddInfo("Settings saved.")
	}
	if msg.TokenErr != nil {
		m.consoleView.AddError("The gateway token could not be stored in the keyring.")
	}
	return nil
}

// updateActiveView routes a message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewTagForm:
		m.tagFormView, cmd = m.tagFormView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	default:
		m.consoleView, cmd = m.consoleView.Update(msg)
	}
	return m, cmd
}

// View renders the active view inside the standard frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var content string
	switch m.currentView {
	case ViewTagForm:
		content = m.tagFormView.View()
	case ViewSettings:
		content = m.settingsView.View()
	default:
		content = m.consoleView.View()
	}

	header := m.layout.RenderHeader(
		"tagbot",
		fmt.Sprintf("server %d", m.consoleView.ServerID()),
	)
	statusBar := m.layout.RenderStatusBar(m.statusHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// statusHints renders the compact keybinding help for the status bar.
func (m Model) statusHints() string {
	hints := ""
	for i, b := range m.keys.ShortHelp() {
		if i > 0 {
			hints += "  "
		}
		hints += b.Help().Key + " " + b.Help().Desc
	}
	return hints
}
