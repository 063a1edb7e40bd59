// Package console is the interactive chat surface. It stands in for the
// chat-platform gateway: slash commands drive the tag store and workflow,
// and any other line is dispatched as a message through the autoresponder.
package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tagbot/internal/keys"
	"github.com/nhle/tagbot/internal/lookup"
	"github.com/nhle/tagbot/internal/model"
	"github.com/nhle/tagbot/internal/respond"
	"github.com/nhle/tagbot/internal/store"
	"github.com/nhle/tagbot/internal/theme"
	"github.com/nhle/tagbot/internal/workflow"
)

// commandTimeout bounds the storage round trip behind a console command.
const commandTimeout = 10 * time.Second

// OpenCreateFormMsg asks the root model to present the tag create form.
type OpenCreateFormMsg struct {
	Session *workflow.Session
}

// OpenEditFormMsg asks the root model to present the tag edit form.
type OpenEditFormMsg struct {
	Session *workflow.Session
}

// ServerChangedMsg reports that the console switched to another server.
type ServerChangedMsg struct {
	ServerID int64
}

// outputMsg carries finished command output back into the transcript.
type outputMsg struct {
	lines []string
}

// suggestionsMsg carries autocomplete candidates for the current partial.
type suggestionsMsg struct {
	partial string
	names   []string
}

// Model is the Bubble Tea model for the chat console.
type Model struct {
	store      store.Store
	lookup     *lookup.Lookup
	controller *workflow.Controller
	dispatcher *respond.Dispatcher
	keys       *keys.KeyMap

	serverID    int64
	authorID    int64
	triggerMode model.MatchType

	input       textinput.Model
	transcript  viewport.Model
	lines       []string
	suggestions string
	lastPartial string
	width       int
	height      int
}

// New creates a console bound to the given core components and identity.
func New(
	s store.Store,
	l *lookup.Lookup,
	c *workflow.Controller,
	d *respond.Dispatcher,
	k *keys.KeyMap,
	serverID, authorID int64,
	width, height int,
) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, or /help for commands"
	ti.CharLimit = model.MaxTriggerLen
	ti.Focus()

	vp := viewport.New(width, contentHeight(height))

	m := Model{
		store:       s,
		lookup:      l,
		controller:  c,
		dispatcher:  d,
		keys:        k,
		serverID:    serverID,
		authorID:    authorID,
		triggerMode: model.MatchLiteral,
		input:       ti,
		transcript:  vp,
		width:       width,
		height:      height,
	}
	m.appendLines(theme.HintStyle.Render("tagbot console. /help lists commands"))
	return m
}

// SetIdentity updates the server/author identity the console acts under.
func (m *Model) SetIdentity(serverID, authorID int64) {
	m.serverID = serverID
	m.authorID = authorID
}

// SetTriggerMode sets the default match type for new autoresponses.
func (m *Model) SetTriggerMode(mt model.MatchType) {
	m.triggerMode = mt
}

// ServerID returns the server the console is currently acting in.
func (m Model) ServerID() int64 {
	return m.serverID
}

// AddBotReply appends an autoresponder reply to the transcript.
func (m *Model) AddBotReply(content string) {
	m.appendLines(theme.BotStyle.Render("bot: " + content))
}

// AddInfo appends an informational line to the transcript.
func (m *Model) AddInfo(text string) {
	m.appendLines(theme.BotStyle.Render(text))
}

// AddError appends a failure line to the transcript.
func (m *Model) AddError(text string) {
	m.appendLines(theme.ErrorStyle.Render(text))
}

// Update handles messages for the console.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			m.suggestions = ""
			m.lastPartial = ""
			if line == "" {
				return m, nil
			}
			return m, m.submitLine(line)
		}

	case outputMsg:
		m.appendLines(msg.lines...)
		return m, nil

	case suggestionsMsg:
		// Stale results for an earlier partial are dropped.
		if msg.partial == m.lastPartial {
			if len(msg.names) == 0 {
				m.suggestions = ""
			} else {
				m.suggestions = theme.HintStyle.Render(
					"suggestions: " + strings.Join(msg.names, ", "),
				)
			}
		}
		return m, nil
	}

	var cmds []tea.Cmd

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	var vpCmd tea.Cmd
	m.transcript, vpCmd = m.transcript.Update(msg)
	cmds = append(cmds, vpCmd)

	if cmd := m.maybeSuggest(); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the transcript, suggestion hint, and input line.
func (m Model) View() string {
	suggestions := m.suggestions
	if suggestions == "" {
		suggestions = " "
	}
	return m.transcript.View() + "\n" + suggestions + "\n" + m.input.View()
}

// SetSize updates the console dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.transcript.Width = width
	m.transcript.Height = contentHeight(height)
	m.refreshTranscript()
}

// contentHeight reserves rows for the suggestion hint and the input line.
func contentHeight(total int) int {
	h := total - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) appendLines(lines ...string) {
	m.lines = append(m.lines, lines...)
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
}

// maybeSuggest issues a lookup when the input is a tag-addressing command
// with a partial name, mirroring interactive autocomplete.
func (m *Model) maybeSuggest() tea.Cmd {
	partial, ok := tagPartial(m.input.Value())
	if !ok {
		m.suggestions = ""
		m.lastPartial = ""
		return nil
	}
	if partial == m.lastPartial {
		return nil
	}
	m.lastPartial = partial

	l := m.lookup
	serverID := m.serverID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		names, err := l.Suggest(ctx, serverID, partial, 0)
		if err != nil {
			return suggestionsMsg{partial: partial}
		}
		return suggestionsMsg{partial: partial, names: names}
	}
}

// tagPartial extracts the partial tag name from a command line that
// autocompletes on tag names.
func tagPartial(line string) (string, bool) {
	for _, prefix := range []string{"/tag ", "/tag-edit ", "/tag-delete "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}

// submitLine echoes the line and routes it to a command handler or to the
// autoresponder dispatcher.
func (m *Model) submitLine(line string) tea.Cmd {
	m.appendLines(theme.MessageStyle.Render(
		fmt.Sprintf("[server %d] you: %s", m.serverID, line),
	))

	if !strings.HasPrefix(line, "/") {
		m.dispatcher.Dispatch(respond.MessageEvent{
			ServerID: m.serverID,
			AuthorID: m.authorID,
			Text:     line,
		})
		return nil
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		m.appendLines(helpLines()...)
		return nil
	case "/server":
		return m.cmdServer(args)
	case "/tag":
		return m.requireArg(args, "/tag <name>", m.cmdTagGet)
	case "/tag-create":
		return m.requireArg(args, "/tag-create <name>", m.cmdTagCreate)
	case "/tag-edit":
		return m.requireArg(args, "/tag-edit <name>", m.cmdTagEdit)
	case "/tag-delete":
		return m.requireArg(args, "/tag-delete <name>", m.cmdTagDelete)
	case "/tags":
		return m.cmdTagList()
	case "/respond-add":
		return m.cmdRespondAdd(line)
	case "/responds":
		return m.cmdRespondList()
	case "/respond-del":
		return m.requireArg(args, "/respond-del <id>", m.cmdRespondDelete)
	case "/prune":
		return m.cmdPrune()
	default:
		m.AddError("Unknown command. /help lists commands.")
		return nil
	}
}

func helpLines() []string {
	hint := theme.HintStyle.Render
	return []string{
		hint("/tag <name>            show a tag"),
		hint("/tag-create <name>     open the create form"),
		hint("/tag-edit <name>       open the edit form"),
		hint("/tag-delete <name>     delete a tag"),
		hint("/tags                  list tags in this server"),
		hint(`/respond-add "<trigger>" <tag>  bind a trigger to a tag`),
		hint("/responds              list autoresponses"),
		hint("/respond-del <id>      delete an autoresponse"),
		hint("/prune                 remove orphaned autoresponses"),
		hint("/server <id>           switch server"),
		hint("anything else is sent as a chat message"),
	}
}

// requireArg enforces a single-argument command shape.
func (m *Model) requireArg(args []string, usage string, fn func(string) tea.Cmd) tea.Cmd {
	if len(args) != 1 {
		m.AddError("Usage: " + usage)
		return nil
	}
	return fn(args[0])
}

func (m *Model) cmdServer(args []string) tea.Cmd {
	if len(args) != 1 {
		m.AddError("Usage: /server <id>")
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		m.AddError("Server id must be a positive integer.")
		return nil
	}
	m.serverID = id
	m.AddInfo(fmt.Sprintf("Switched to server %d.", id))
	return func() tea.Msg { return ServerChangedMsg{ServerID: id} }
}

func (m *Model) cmdTagGet(name string) tea.Cmd {
	s := m.store
	serverID := m.serverID
	return runCommand(func(ctx context.Context) []string {
		tag, err := s.GetTag(ctx, serverID, name)
		if errors.Is(err, store.ErrNotFound) {
			return errLines("This tag does not exist.")
		}
		if err != nil {
			return errLines("Something went wrong. Please try again.")
		}
		return []string{theme.BotStyle.Render(tag.Content)}
	})
}

// cmdTagCreate does the advisory pre-check and opens a create session; the
// form's submission re-validates uniqueness in the store.
func (m *Model) cmdTagCreate(name string) tea.Cmd {
	c := m.controller
	serverID := m.serverID
	authorID := m.authorID
	return runMsg(func(ctx context.Context) tea.Msg {
		sess, err := c.BeginCreate(ctx, serverID, authorID, name)
		if errors.Is(err, store.ErrDuplicateName) {
			return outputMsg{lines: errLines("This tag already exists.")}
		}
		if err != nil {
			return outputMsg{lines: errLines("Something went wrong. Please try again.")}
		}
		return OpenCreateFormMsg{Session: sess}
	})
}

func (m *Model) cmdTagEdit(name string) tea.Cmd {
	c := m.controller
	serverID := m.serverID
	authorID := m.authorID
	return runMsg(func(ctx context.Context) tea.Msg {
		sess, err := c.BeginEdit(ctx, serverID, authorID, name)
		if errors.Is(err, store.ErrNotFound) {
			return outputMsg{lines: errLines("This tag does not exist.")}
		}
		if err != nil {
			return outputMsg{lines: errLines("Something went wrong. Please try again.")}
		}
		return OpenEditFormMsg{Session: sess}
	})
}

func (m *Model) cmdTagDelete(name string) tea.Cmd {
	s := m.store
	serverID := m.serverID
	return runCommand(func(ctx context.Context) []string {
		deleted, err := s.DeleteTag(ctx, serverID, name)
		if err != nil {
			return errLines("Something went wrong. Please try again.")
		}
		if deleted == 0 {
			return errLines("No tag was found.")
		}
		return infoLines("Tag deleted successfully.")
	})
}

func (m *Model) cmdTagList() tea.Cmd {
	s := m.store
	serverID := m.serverID
	return runCommand(func(ctx context.Context) []string {
		tags, err := s.ListTags(ctx, serverID, 0)
		if err != nil {
			return errLines("Something went wrong. Please try again.")
		}
		count, err := s.CountTags(ctx, serverID)
		if err != nil {
			count = len(tags)
		}
		if count == 0 {
			return infoLines("This server has no tags yet.")
		}
		lines := []string{theme.BotStyle.Render(fmt.Sprintf("%d tag(s):", count))}
		for _, tag := range tags {
			lines = append(lines, "  "+theme.TagNameStyle.Render(tag.Name))
		}
		return lines
	})
}

// cmdRespondAdd parses `/respond-add "<trigger>" <tag>`. The trigger may be
// quoted to contain spaces; the final field is the tag name.
func (m *Model) cmdRespondAdd(line string) tea.Cmd {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "/respond-add"))
	trigger, tagName, ok := splitTriggerAndTag(rest)
	if !ok {
		m.AddError(`Usage: /respond-add "<trigger>" <tag>`)
		return nil
	}

	s := m.store
	serverID := m.serverID
	authorID := m.authorID
	mode := m.triggerMode
	return runCommand(func(ctx context.Context) []string {
		tag, err := s.GetTag(ctx, serverID, tagName)
		if errors.Is(err, store.ErrNotFound) {
			return errLines("This tag does not exist.")
		}
		if err != nil {
			return errLines("Something went wrong. Please try again.")
		}

		ar, err := s.CreateAutoresponse(ctx, serverID, trigger, mode, authorID, tag.ID)
		if err != nil {
			return errLines("Could not create the autoresponse: " + err.Error())
		}
		return infoLines(fmt.Sprintf(
			"Autoresponse %d created: %q -> %s.", ar.ID, ar.Trigger, tagName,
		))
	})
}

func (m *Model) cmdRespondList() tea.Cmd {
	s := m.store
	serverID := m.serverID
	return runCommand(func(ctx context.Context) []string {
		responses, err := s.ListAutoresponses(ctx, serverID)
		if err != nil {
			return errLines("Something went wrong. Please try again.")
		}
		if len(responses) == 0 {
			return infoLines("This server has no autoresponses.")
		}

		lines := []string{theme.BotStyle.Render(fmt.Sprintf("%d autoresponse(s):", len(responses)))}
		for _, ar := range responses {
			target := "(orphaned)"
			if tag, err := s.GetTagByID(ctx, ar.TagID); err == nil {
				target = tag.Name
			}
			lines = append(lines, fmt.Sprintf(
				"  [%d] %s %s -> %s",
				ar.ID,
				theme.TriggerStyle.Render(ar.Trigger),
				theme.HintStyle.Render("("+string(ar.MatchType)+")"),
				theme.TagNameStyle.Render(target),
			))
		}
		return lines
	})
}

func (m *Model) cmdRespondDelete(arg string) tea.Cmd {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		m.AddError("Autoresponse id must be an integer.")
		return nil
	}

	s := m.store
	serverID := m.serverID
	return runCommand(func(ctx context.Context) []string {
		deleted, err := s.DeleteAutoresponse(ctx, serverID, id)
		if err != nil {
			return errLines("Something went wrong. Please try again.")
		}
		if deleted == 0 {
			return errLines("No autoresponse was found.")
		}
		return infoLines("Autoresponse deleted successfully.")
	})
}

func (m *Model) cmdPrune() tea.Cmd {
	s := m.store
	serverID := m.serverID
	return runCommand(func(ctx context.Context) []string {
		pruned, err := s.PruneOrphanAutoresponses(ctx, serverID)
		if err != nil {
			return errLines("Something went wrong. Please try again.")
		}
		return infoLines(fmt.Sprintf("Removed %d orphaned autoresponse(s).", pruned))
	})
}

// runCommand executes fn off the UI loop with a bounded context and feeds
// its output lines back into the transcript.
func runCommand(fn func(ctx context.Context) []string) tea.Cmd {
	return runMsg(func(ctx context.Context) tea.Msg {
		return outputMsg{lines: fn(ctx)}
	})
}

// runMsg executes fn off the UI loop with a bounded context.
func runMsg(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return fn(ctx)
	}
}

// splitTriggerAndTag splits `"<trigger>" <tag>` or `<trigger> <tag>`; the
// last whitespace-separated field is the tag name.
func splitTriggerAndTag(rest string) (trigger, tagName string, ok bool) {
	if rest == "" {
		return "", "", false
	}

	if strings.HasPrefix(rest, `"`) {
		end := strings.Index(rest[1:], `"`)
		if end < 0 {
			return "", "", false
		}
		trigger = rest[1 : end+1]
		tagName = strings.TrimSpace(rest[end+2:])
		if trigger == "" || tagName == "" || strings.ContainsAny(tagName, " \t") {
			return "", "", false
		}
		return trigger, tagName, true
	}

	idx := strings.LastIndexAny(rest, " \t")
	if idx < 0 {
		return "", "", false
	}
	trigger = strings.TrimSpace(rest[:idx])
	tagName = strings.TrimSpace(rest[idx+1:])
	if trigger == "" || tagName == "" {
		return "", "", false
	}
	return trigger, tagName, true
}

func infoLines(text string) []string {
	return []string{theme.BotStyle.Render(text)}
}

func errLines(text string) []string {
	return []string{theme.ErrorStyle.Render(text)}
}
