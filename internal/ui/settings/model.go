// Package settings is the huh form for process configuration: the identity
// the console acts under, matcher defaults, and the chat-gateway token
// (stored in the system keyring, never in the config file).
package settings

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tagbot/internal/credential"
	"github.com/nhle/tagbot/internal/model"
	"github.com/nhle/tagbot/internal/theme"
)

// SavedMsg is dispatched when settings were saved. TokenErr carries a
// keyring failure, which does not invalidate the rest of the save.
type SavedMsg struct {
	Config   model.AppConfig
	TokenErr error
}

// CancelMsg is dispatched when the user abandons the settings form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	serverID    string
	authorID    string
	triggerMode string
	cascade     bool
	token       string
}

// Model is the Bubble Tea model for the settings form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	cfg    model.AppConfig
	width  int
	height int
}

// New creates a new settings form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form from the current configuration.
func (m *Model) Start(cfg model.AppConfig) tea.Cmd {
	m.cfg = cfg
	m.fb.serverID = strconv.FormatInt(cfg.Identity.ServerID, 10)
	m.fb.authorID = strconv.FormatInt(cfg.Identity.AuthorID, 10)
	m.fb.triggerMode = cfg.Matcher.TriggerMode
	m.fb.cascade = cfg.Matcher.CascadeDelete
	m.fb.token = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the settings form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render("Settings") + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server ID").
				Description("The community the console acts in.").
				Value(&m.fb.serverID).
				Validate(validateID),
			huh.NewInput().
				Title("Author ID").
				Description("The user identity attached to created tags.").
				Value(&m.fb.authorID).
				Validate(validateID),
			huh.NewSelect[string]().
				Title("Default trigger mode").
				Options(
					huh.NewOption("Literal substring", string(model.MatchLiteral)),
					huh.NewOption("Regular expression", string(model.MatchPattern)),
				).
				Value(&m.fb.triggerMode),
			huh.NewConfirm().
				Title("Cascade autoresponse delete").
				Description("Delete autoresponses together with their tag.").
				Value(&m.fb.cascade),
			huh.NewInput().
				Title("Gateway token").
				Description("Stored in the system keyring. Leave blank to keep the current one.").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	cfg := m.cfg
	cfg.Identity.ServerID, _ = strconv.ParseInt(strings.TrimSpace(m.fb.serverID), 10, 64)
	cfg.Identity.AuthorID, _ = strconv.ParseInt(strings.TrimSpace(m.fb.authorID), 10, 64)
	cfg.Matcher.TriggerMode = m.fb.triggerMode
	cfg.Matcher.CascadeDelete = m.fb.cascade
	token := m.fb.token

	return func() tea.Msg {
		var tokenErr error
		if token != "" {
			tokenErr = credential.Set(credential.GatewayTokenKey, token)
		}
		return SavedMsg{Config: cfg, TokenErr: tokenErr}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateID(s string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}
