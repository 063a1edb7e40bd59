// Package tagform is the interactive front end of the two-phase tag
// create/edit workflow. The form is opened against a workflow session and
// the submit handed back to the controller, which owns the authoritative
// uniqueness/existence checks.
package tagform

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tagbot/internal/model"
	"github.com/nhle/tagbot/internal/theme"
	"github.com/nhle/tagbot/internal/workflow"
)

// submitTimeout bounds the storage round trip on form submission.
const submitTimeout = 10 * time.Second

// TagSubmittedMsg is dispatched when the form was submitted and the
// workflow resolved a terminal outcome.
type TagSubmittedMsg struct {
	Result workflow.Result
}

// TagFormCancelMsg is dispatched when the user abandons the form.
type TagFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name    string
	content string
}

// Model is the Bubble Tea model for the tag create/edit form.
type Model struct {
	controller *workflow.Controller
	form       *huh.Form
	fb         *formBindings
	session    *workflow.Session
	editMode   bool
	width      int
	height     int
}

// New creates a new tag form model over the given workflow controller.
func New(c *workflow.Controller, width, height int) Model {
	return Model{
		controller: c,
		fb:         &formBindings{},
		width:      width,
		height:     height,
	}
}

// StartCreate initializes the form for a create session. The name field is
// prefilled from the session but stays editable, as on the original form.
func (m *Model) StartCreate(sess *workflow.Session) tea.Cmd {
	m.editMode = false
	m.session = sess
	m.fb.name = sess.Name
	m.fb.content = ""
	m.form = m.buildCreateForm()
	return m.form.Init()
}

// StartEdit initializes the form for an edit session, prefilled with the
// tag's current content.
func (m *Model) StartEdit(sess *workflow.Session) tea.Cmd {
	m.editMode = true
	m.session = sess
	m.fb.name = sess.Name
	m.fb.content = sess.Content
	m.form = m.buildEditForm()
	return m.form.Init()
}

// Update handles messages for the tag form.
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
		if m.session != nil {
			m.controller.Abandon(m.session.Token)
		}
		return m, func() tea.Msg { return TagFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the tag form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Tag"
	if m.editMode {
		titleText = "Edit Tag: " + m.fb.name
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildCreateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tag name").
				Placeholder("name").
				Value(&m.fb.name).
				Validate(validateName),
			m.contentField(),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildEditForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			m.contentField(),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) contentField() huh.Field {
	return huh.NewText().
		Title("Tag content").
		Placeholder("What should this tag say?").
		Value(&m.fb.content).
		Validate(validateContent)
}

// handleSubmit hands the collected fields to the workflow controller. The
// controller's store call is the authority; the outcome comes back as a
// TagSubmittedMsg.
func (m Model) handleSubmit() tea.Cmd {
	ctrl := m.controller
	token := m.session.Token
	name := m.fb.name
	content := m.fb.content
	editMode := m.editMode

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		var res workflow.Result
		if editMode {
			res = ctrl.SubmitEdit(ctx, token, content)
		} else {
			res = ctrl.SubmitCreate(ctx, token, name, content)
		}
		return TagSubmittedMsg{Result: res}
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

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("tag name is required")
	}
	if len(s) > model.MaxTagNameLen {
		return fmt.Errorf("tag name must be at most %d characters", model.MaxTagNameLen)
	}
	return nil
}

func validateContent(s string) error {
	if len(s) > model.MaxTagContentLen {
		return fmt.Errorf("tag content must be at most %d characters", model.MaxTagContentLen)
	}
	return nil
}
