// Package bubbletea implements [ui.ChatUI] for interactive terminals
// using the Charm bubbletea framework: a scrollable conversation
// viewport, a text input prompt, a typing spinner, and Markdown
// rendering via glamour.
package bubbletea

import (
	"context"
	"fmt"
	"io"
	"os/user"
	"strings"
	"sync"

	// Packages
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
	ui "github.com/mutablelogic/go-miniapp/pkg/ui"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Terminal implements [ui.ChatUI] for interactive terminal sessions.
type Terminal struct {
	program *tea.Program
	events  chan ui.Event
	done    chan struct{}
	mu      sync.Mutex
	err     error
}

// model is the bubbletea model managing the TUI state.
type model struct {
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	history   []entry
	typing    bool
	width     int
	height    int
	ready     bool
	quitting  bool
	events    chan<- ui.Event
	renderer  *glamour.TermRenderer
	stylePath string
	ctx       *termContext
}

type entry struct {
	role      string // "user", "assistant", "system", "error"
	text      string // rendered text
	raw       string // raw text, re-rendered on resize
	glamoured bool
}

// termContext implements [ui.Context] for the terminal session.
type termContext struct {
	program  *tea.Program
	identity schema.Identity
}

///////////////////////////////////////////////////////////////////////////////
// MESSAGES

type appendMsg struct {
	role string
	text string
}

type typingMsg bool

type clearMsg struct{}

///////////////////////////////////////////////////////////////////////////////
// STYLES

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	systemStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a terminal chat surface. It takes over the terminal and
// should be closed when done.
func New() (*Terminal, error) {
	identity := schema.Identity{UserID: "terminal", Username: "user"}
	if u, err := user.Current(); err == nil {
		identity.UserID = u.Uid
		identity.Username = u.Username
		identity.FirstName = u.Name
	}

	// Detect the terminal background before bubbletea starts, so the
	// escape-sequence response doesn't leak into its input reader
	stylePath := "dark"
	if !termenv.HasDarkBackground() {
		stylePath = "light"
	}

	events := make(chan ui.Event, 1)
	tctx := &termContext{identity: identity}

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Focus()
	input.CharLimit = 0

	m := &model{
		input:     input,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		events:    events,
		stylePath: stylePath,
		ctx:       tctx,
	}

	t := &Terminal{
		events: events,
		done:   make(chan struct{}),
	}
	t.program = tea.NewProgram(m, tea.WithAltScreen())
	tctx.program = t.program

	go func() {
		defer close(t.done)
		if _, err := t.program.Run(); err != nil {
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
		}
		close(events)
	}()

	return t, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Receive blocks until the next user event or context cancellation. It
// returns io.EOF when the user quits the TUI.
func (t *Terminal) Receive(ctx context.Context) (ui.Event, error) {
	select {
	case <-ctx.Done():
		return ui.Event{}, ctx.Err()
	case evt, ok := <-t.events:
		if !ok {
			t.mu.Lock()
			err := t.err
			t.mu.Unlock()
			if err != nil {
				return ui.Event{}, err
			}
			return ui.Event{}, io.EOF
		}
		return evt, nil
	}
}

// Close shuts down the TUI and restores the terminal.
func (t *Terminal) Close() error {
	t.program.Quit()
	<-t.done
	return nil
}

// AppendHistory adds a turn to the display without generating an event,
// used to restore a persisted conversation.
func (t *Terminal) AppendHistory(role, text string) {
	t.program.Send(appendMsg{role: role, text: text})
}

// ClearHistory clears the conversation display.
func (t *Terminal) ClearHistory() {
	t.program.Send(clearMsg{})
}

///////////////////////////////////////////////////////////////////////////////
// CONTEXT

func (c *termContext) Identity() schema.Identity {
	return c.identity
}

func (c *termContext) ConversationID() string {
	return "terminal"
}

func (c *termContext) SendText(_ context.Context, text string) error {
	c.program.Send(appendMsg{role: "system", text: text})
	return nil
}

func (c *termContext) SendMarkdown(_ context.Context, markdown string) error {
	c.program.Send(appendMsg{role: "assistant", text: markdown})
	return nil
}

// SendImage shows where the generated image can be found; a terminal
// cannot display it inline.
func (c *termContext) SendImage(_ context.Context, image ui.Image) error {
	ref := image.Path
	if ref == "" {
		ref = image.URL
	}
	text := fmt.Sprintf("Image ready: %s", ref)
	if image.Caption != "" {
		text = image.Caption + "\n" + text
	}
	c.program.Send(appendMsg{role: "system", text: text})
	return nil
}

func (c *termContext) SetTyping(_ context.Context, typing bool) error {
	c.program.Send(typingMsg(typing))
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// MODEL

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")

			// Echo the user's message, then hand the event to the consumer
			if !strings.HasPrefix(text, "/") {
				m.history = append(m.history, entry{role: "user", text: text})
				m.updateViewport()
			}
			m.events <- m.parseEvent(text)
			return m, nil
		}

	case tea.WindowSizeMsg:
		const footerHeight = 2 // input + status line
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
		m.input.Width = msg.Width - 4

		// Re-render history at the new width
		m.newRenderer()
		m.rerenderHistory()
		m.updateViewport()
		return m, nil

	case appendMsg:
		m.history = append(m.history, m.renderEntry(msg.role, msg.text))
		m.typing = false
		m.updateViewport()
		return m, nil

	case typingMsg:
		m.typing = bool(msg)
		return m, nil

	case clearMsg:
		m.history = nil
		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	// Forward navigation keys to the viewport, but not typing keys, so
	// the view doesn't jump on every keystroke
	if keyMsg, isKey := msg.(tea.KeyMsg); isKey {
		switch keyMsg.Type {
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	var status string
	if m.typing {
		status = dimStyle.Render(m.spinner.View() + " thinking...")
	} else {
		status = dimStyle.Render("ctrl+c to quit")
	}

	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), m.input.View(), status)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// renderEntry renders assistant and system text through glamour, other
// roles stay plain.
func (m *model) renderEntry(role, text string) entry {
	e := entry{role: role, text: text, raw: text}
	if (role == "assistant" || role == "system") && m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			e.text = strings.TrimSpace(out)
			e.glamoured = true
		}
	}
	return e
}

func (m *model) newRenderer() {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.stylePath),
		glamour.WithWordWrap(m.wrapWidth()),
	)
	if err == nil {
		m.renderer = r
	}
}

func (m *model) rerenderHistory() {
	if m.renderer == nil {
		return
	}
	for i := range m.history {
		if !m.history[i].glamoured || m.history[i].raw == "" {
			continue
		}
		if out, err := m.renderer.Render(m.history[i].raw); err == nil {
			m.history[i].text = strings.TrimSpace(out)
		}
	}
}

func (m *model) wrapWidth() int {
	const margin = 14
	return max(m.width-margin, 20)
}

func (m *model) updateViewport() {
	var b strings.Builder
	for _, e := range m.history {
		if e.role != "" {
			b.WriteString(m.styleRole(e.role))
		}
		if e.text != "" {
			if e.glamoured {
				// Glamour handles margins and wrapping itself
				b.WriteString("\n" + e.text)
			} else {
				b.WriteString("\n" + indent(wordwrap.String(e.text, m.wrapWidth())))
			}
		}
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *model) styleRole(role string) string {
	switch role {
	case "user":
		return userStyle.Render(role + ":")
	case "assistant":
		return assistantStyle.Render(role + ":")
	case "system":
		return systemStyle.Render(role + ":")
	case "error":
		return errorStyle.Render(role + ":")
	}
	return role + ":"
}

func (m *model) parseEvent(text string) ui.Event {
	evt := ui.Event{
		Type:    ui.EventText,
		Context: m.ctx,
		Text:    text,
	}
	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		evt.Type = ui.EventCommand
		evt.Command = strings.TrimPrefix(fields[0], "/")
		evt.Args = fields[1:]
	}
	return evt
}

// indent gives plain text the same two-space left margin glamour uses.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" && !strings.HasPrefix(line, "  ") {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
