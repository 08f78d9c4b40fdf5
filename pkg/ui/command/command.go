// Package command implements shared event handling for chat surfaces.
//
// A [Dispatcher] loops over a [ui.ChatUI] event source, keeps one
// [Session] of controllers per conversation, and routes text, slash
// commands and attachments to them. The same dispatcher drives the
// terminal and Telegram front ends.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	// Packages
	zerolog "github.com/rs/zerolog"
	miniapp "github.com/mutablelogic/go-miniapp"
	chat "github.com/mutablelogic/go-miniapp/pkg/chat"
	compose "github.com/mutablelogic/go-miniapp/pkg/compose"
	imagegen "github.com/mutablelogic/go-miniapp/pkg/imagegen"
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
	store "github.com/mutablelogic/go-miniapp/pkg/store"
	ui "github.com/mutablelogic/go-miniapp/pkg/ui"
	table "github.com/mutablelogic/go-miniapp/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Dispatcher routes incoming events to per-conversation sessions.
type Dispatcher struct {
	chatClient  miniapp.ChatClient
	imageClient miniapp.ImageClient
	store       store.Store
	catalog     imagegen.Catalog
	log         zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// Session bundles the controllers for one conversation. Conversation
// state is namespaced in the shared store by conversation identifier.
type Session struct {
	Chat  *chat.Controller
	Image *imagegen.Controller

	conversation ui.Context
	store        store.Store
	log          zerolog.Logger
	pendingClear bool
}

// conversationHost adapts a ui.Context to the host interface the
// controllers expect. Confirmations are handled by the command flow, not
// the host, so Confirm always declines.
type conversationHost struct {
	conversation ui.Context
}

func (h conversationHost) Identity() schema.Identity {
	return h.conversation.Identity()
}

func (h conversationHost) Confirm(ctx context.Context, message string) (bool, error) {
	return false, nil
}

func (h conversationHost) OpenLink(url string) error {
	return h.conversation.SendText(context.Background(), url)
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewDispatcher creates a dispatcher. The store is shared across
// conversations; each session sees a namespaced view of it.
func NewDispatcher(chatClient miniapp.ChatClient, imageClient miniapp.ImageClient, st store.Store, catalog imagegen.Catalog, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		chatClient:  chatClient,
		imageClient: imageClient,
		store:       st,
		catalog:     catalog,
		log:         log,
		sessions:    make(map[string]*Session),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Run loops over the event source until the context is cancelled or the
// surface closes. Events are handled concurrently; the controllers
// serialise their own state.
func (d *Dispatcher) Run(ctx context.Context, surface ui.ChatUI) error {
	for {
		evt, err := surface.Receive(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		go func(evt ui.Event) {
			if err := d.Handle(ctx, evt); err != nil {
				d.log.Error().Err(err).Str("conversation", evt.Context.ConversationID()).Msg("event")
			}
		}(evt)
	}
}

// Handle routes a single event to its conversation session.
func (d *Dispatcher) Handle(ctx context.Context, evt ui.Event) error {
	session, err := d.session(evt.Context)
	if err != nil {
		return err
	}

	d.log.Debug().
		Str("conversation", evt.Context.ConversationID()).
		Stringer("type", evt.Type).
		Str("command", evt.Command).
		Msg("event")

	switch evt.Type {
	case ui.EventCommand:
		return session.Command(ctx, evt.Command, evt.Args)
	case ui.EventAttachment:
		return session.Attachment(ctx, evt)
	default:
		return session.Text(ctx, evt.Text)
	}
}

// Session returns the session for a conversation, creating it on first
// contact.
func (d *Dispatcher) session(conversation ui.Context) (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := conversation.ConversationID()
	if session, ok := d.sessions[id]; ok {
		// Conversation context can change between polls, responses go
		// to the most recent one
		session.conversation = conversation
		return session, nil
	}

	session, err := NewSession(d.chatClient, d.imageClient, store.WithPrefix(d.store, id), conversation, d.catalog, d.log)
	if err != nil {
		return nil, err
	}
	d.sessions[id] = session
	return session, nil
}

// NewSession builds the controllers for one conversation, rendering
// through the given conversation context.
func NewSession(chatClient miniapp.ChatClient, imageClient miniapp.ImageClient, st store.Store, conversation ui.Context, catalog imagegen.Catalog, log zerolog.Logger) (*Session, error) {
	session := &Session{
		conversation: conversation,
		store:        st,
		log:          log,
	}
	h := conversationHost{conversation}
	renderer := &chatRenderer{session: session}
	session.Chat = chat.New(chatClient, st, h, renderer)
	// Restored history is already visible on the surface; deliver only
	// turns appended from here on
	renderer.seen = len(session.Chat.History())

	image, err := imagegen.New(imageClient, st, h, &imageRenderer{session: session}, catalog)
	if err != nil {
		return nil, err
	}
	session.Image = image
	return session, nil
}

// Text submits message text to the chat controller.
func (s *Session) Text(ctx context.Context, text string) error {
	s.pendingClear = false
	// The controller records failures as error turns, which the
	// renderer has already delivered
	s.Chat.Send(ctx, text) //nolint:errcheck
	return nil
}

// Attachment feeds a received image into the generation controller and
// runs a generation when the selected mode is ready for one.
func (s *Session) Attachment(ctx context.Context, evt ui.Event) error {
	s.pendingClear = false
	if evt.Attachment == nil {
		return nil
	}
	data, err := io.ReadAll(evt.Attachment.Data)
	if err != nil {
		return err
	}

	attachment := miniapp.NewAttachment(evt.Attachment.Filename, data)
	if err := s.Image.AttachFile(attachment); err != nil {
		return s.conversation.SendText(ctx, imagegen.FailureMessage(s.lang(), err))
	}
	if caption := strings.TrimSpace(evt.Text); caption != "" {
		s.Image.SetPrompt(caption)
	}
	// The renderer delivers the result or the failure message
	s.Image.Generate(ctx) //nolint:errcheck
	return nil
}

// Command routes a slash command.
func (s *Session) Command(ctx context.Context, command string, args []string) error {
	if command != "clear" {
		s.pendingClear = false
	}
	switch command {
	case "start":
		return s.cmdStart(ctx)
	case "clear":
		return s.cmdClear(ctx, args)
	case "style":
		return s.cmdPreference(ctx, "style", args)
	case "persona":
		return s.cmdPreference(ctx, "persona", args)
	case "lang":
		return s.cmdLang(ctx, args)
	case "modes":
		return s.cmdModes(ctx)
	case "mode":
		return s.cmdMode(ctx, args)
	case "image":
		return s.cmdImage(ctx, args)
	case "help":
		return s.cmdHelp(ctx)
	default:
		return s.conversation.SendText(ctx, fmt.Sprintf("Unknown command: /%s (try /help)", command))
	}
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (s *Session) cmdStart(ctx context.Context) error {
	if err := s.conversation.SendText(ctx, compose.Greeting(s.lang())); err != nil {
		return err
	}
	return s.cmdHelp(ctx)
}

// cmdClear is a two-step flow: the first /clear asks for confirmation,
// "/clear confirm" erases the history.
func (s *Session) cmdClear(ctx context.Context, args []string) error {
	if s.pendingClear || (len(args) > 0 && args[0] == "confirm") {
		s.pendingClear = false
		s.Chat.Reset()
		return s.conversation.SendText(ctx, compose.Greeting(s.lang()))
	}
	s.pendingClear = true
	return s.conversation.SendText(ctx, compose.ConfirmClear(s.lang())+" (/clear confirm)")
}

func (s *Session) cmdPreference(ctx context.Context, name string, args []string) error {
	prefs := s.Chat.Preferences()
	if len(args) == 0 {
		switch name {
		case "style":
			return s.conversation.SendText(ctx, fmt.Sprintf("Style: %s (short, steps, detail)", prefs.Style))
		default:
			return s.conversation.SendText(ctx, fmt.Sprintf("Persona: %s (friendly, fun, strict, smart)", prefs.Persona))
		}
	}
	value := strings.ToLower(args[0])
	var err error
	switch name {
	case "style":
		err = s.Chat.SetStyle(value)
	default:
		err = s.Chat.SetPersona(value)
	}
	if err != nil {
		return err
	}
	return s.conversation.SendText(ctx, fmt.Sprintf("%s set to %s", name, value))
}

func (s *Session) cmdLang(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return s.conversation.SendText(ctx, fmt.Sprintf("Language: %s (%s)", s.lang(), strings.Join(schema.Languages(), ", ")))
	}
	code := strings.ToLower(args[0])
	if !schema.IsSupportedLanguage(code) {
		return s.conversation.SendText(ctx, fmt.Sprintf("Unsupported language %q (%s)", code, strings.Join(schema.Languages(), ", ")))
	}
	if err := s.Chat.SetLanguage(code); err != nil {
		return err
	}
	return s.conversation.SendText(ctx, "Language set to "+schema.LanguageName(code))
}

func (s *Session) cmdModes(ctx context.Context) error {
	return s.conversation.SendMarkdown(ctx, table.RenderMarkdown(ModesTable{s.Image.Modes()}))
}

func (s *Session) cmdMode(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return s.cmdModes(ctx)
	}
	id := args[0]
	mode, ok := s.Image.Modes().Lookup(id)
	if !ok {
		return s.conversation.SendText(ctx, fmt.Sprintf("Unknown mode %q (try /modes)", id))
	}
	s.Image.SelectMode(id)
	hint := "Send a prompt with /image <prompt>"
	if mode.NeedsImage {
		hint = "Send a photo, optionally with a caption"
	}
	return s.conversation.SendText(ctx, fmt.Sprintf("%s — %d ⭐️. %s", mode.Title, mode.Price, hint))
}

func (s *Session) cmdImage(ctx context.Context, args []string) error {
	if prompt := strings.TrimSpace(strings.Join(args, " ")); prompt != "" {
		s.Image.SetPrompt(prompt)
	}
	// The renderer delivers the result or the failure message
	s.Image.Generate(ctx) //nolint:errcheck
	return nil
}

func (s *Session) cmdHelp(ctx context.Context) error {
	help := "Available commands:\n\n" +
		"```\n" +
		"/clear                    - Clear the conversation\n" +
		"/style [short|steps|detail] - Show or set the reply style\n" +
		"/persona [name]           - Show or set the reply persona\n" +
		"/lang [code]              - Show or set the language\n" +
		"/modes                    - List image generation modes\n" +
		"/mode <id>                - Select a generation mode\n" +
		"/image [prompt]           - Generate an image\n" +
		"/help                     - Show this help\n" +
		"```"
	return s.conversation.SendMarkdown(ctx, help)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (s *Session) lang() string {
	return s.Chat.Preferences().Language
}

///////////////////////////////////////////////////////////////////////////////
// RENDERERS

// chatRenderer delivers assistant turns appended after the session
// baseline. The user's own messages are already visible on the surface,
// so only assistant turns are sent.
type chatRenderer struct {
	session *Session
	seen    int
}

func (r *chatRenderer) Render(view chat.View) {
	ctx := context.Background()
	conversation := r.session.conversation

	if len(view.Turns) < r.seen {
		// History was cleared; the clear flow delivers the greeting
		r.seen = len(view.Turns)
	}
	for _, turn := range view.Turns[r.seen:] {
		if turn.Role == schema.RoleAssistant {
			conversation.SendMarkdown(ctx, turn.Text) //nolint:errcheck
		}
	}
	r.seen = len(view.Turns)
	conversation.SetTyping(ctx, view.Typing) //nolint:errcheck
}

// imageRenderer delivers generation results and failure messages.
type imageRenderer struct {
	session *Session
}

func (r *imageRenderer) Render(view imagegen.View) {
	ctx := context.Background()
	conversation := r.session.conversation
	log := r.session.log.With().
		Str("conversation", conversation.ConversationID()).
		Str("session", view.Session).
		Logger()

	switch view.Status {
	case imagegen.StatusGenerating:
		log.Debug().Str("mode", view.Mode.ID).Msg("generating")
		conversation.SetTyping(ctx, true) //nolint:errcheck
	case imagegen.StatusFailed:
		log.Warn().Str("reason", view.Message).Msg("generation failed")
		conversation.SetTyping(ctx, false)       //nolint:errcheck
		conversation.SendText(ctx, view.Message) //nolint:errcheck
	case imagegen.StatusResultReady:
		log.Debug().Msg("generation complete")
		conversation.SetTyping(ctx, false) //nolint:errcheck
		if view.Result == nil {
			return
		}
		image := ui.Image{Path: view.Result.Path()}
		if image.Path == "" {
			image.URL = view.Result.Href()
		}
		conversation.SendImage(ctx, image) //nolint:errcheck
	}
}

///////////////////////////////////////////////////////////////////////////////
// TABLE DATA

// ModesTable adapts a mode catalog to the table renderer.
type ModesTable struct {
	Catalog imagegen.Catalog
}

func (t ModesTable) Header() []string {
	return []string{"Mode", "Title", "Price ⭐️", "Input"}
}

func (t ModesTable) Len() int {
	return len(t.Catalog)
}

func (t ModesTable) Row(i int) []any {
	mode := t.Catalog[i]
	input := "prompt"
	if mode.NeedsImage {
		input = "image"
	}
	return []any{table.Bold{Value: mode.ID}, mode.Title, mode.Price, input}
}
