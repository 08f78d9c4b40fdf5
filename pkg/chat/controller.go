/*
Package chat implements the conversation session controller: it owns the
persisted history, composes prompts from the recent window and the stored
preferences, and calls the chat endpoint. Rendering is delegated to a
Renderer so the same controller drives the terminal and Telegram front
ends.
*/
package chat

import (
	"context"
	"strings"
	"sync"

	// Packages
	miniapp "github.com/mutablelogic/go-miniapp"
	compose "github.com/mutablelogic/go-miniapp/pkg/compose"
	host "github.com/mutablelogic/go-miniapp/pkg/host"
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
	store "github.com/mutablelogic/go-miniapp/pkg/store"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// View is an immutable projection of the conversation for rendering.
type View struct {
	Turns  schema.Conversation
	Typing bool
}

// Renderer receives a View after every state change. Implementations must
// not call back into the controller from Render.
type Renderer interface {
	Render(View)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(View)

func (f RendererFunc) Render(view View) {
	f(view)
}

// Controller is the conversation session controller. All methods are safe
// for concurrent use; a send in flight makes further sends no-ops rather
// than queueing them.
type Controller struct {
	mu       sync.Mutex
	client   miniapp.ChatClient
	store    store.Store
	host     host.Host
	renderer Renderer
	history  schema.Conversation
	sending  bool
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a controller with history restored from the store. Corrupt
// or missing history starts a fresh conversation; an empty conversation
// is seeded with the localized greeting, which is persisted like any
// other turn.
func New(client miniapp.ChatClient, st store.Store, h host.Host, renderer Renderer) *Controller {
	c := &Controller{
		client:   client,
		store:    st,
		host:     h,
		renderer: renderer,
	}

	var history schema.Conversation
	if store.GetJSON(st, store.KeyHistory, &history) {
		c.history = history.Compact()
	}
	if len(c.history) == 0 {
		c.seedGreeting()
	}
	return c
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Send submits user text to the chat endpoint and appends both the user
// turn and the outcome turn to the history. Whitespace-only text and
// sends issued while another is in flight are silently ignored. A failed
// request is recorded as a localized error turn; the error is also
// returned for callers that want it.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if text == "" || c.sending {
		c.mu.Unlock()
		return nil
	}
	c.sending = true

	prefs := c.preferences()
	prior := append(schema.Conversation(nil), c.history...)
	c.history.Append(schema.RoleUser, text)
	c.saveHistory()
	c.render(true)
	c.mu.Unlock()

	// The lock is not held across the request so that state can be
	// inspected, and further sends dropped, while it is in flight
	response, err := c.client.Chat(ctx, schema.ChatRequest{
		Text:     compose.Prompt(prior, prefs, text),
		Lang:     prefs.Language,
		Style:    prefs.Style,
		Persona:  prefs.Persona,
		Identity: c.identity(),
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.history.Append(schema.RoleAssistant, compose.ErrorTurn(prefs.Language, err))
	} else {
		reply := response.Text()
		if reply == "" {
			reply = compose.NoAnswer(prefs.Language)
		}
		c.history.Append(schema.RoleAssistant, reply)
	}
	c.saveHistory()
	c.sending = false
	c.render(false)
	return err
}

// Clear asks the host to confirm, then erases the history and reseeds the
// greeting. It reports whether the history was cleared.
func (c *Controller) Clear(ctx context.Context) (bool, error) {
	c.mu.Lock()
	prefs := c.preferences()
	c.mu.Unlock()

	ok, err := c.host.Confirm(ctx, compose.ConfirmClear(prefs.Language))
	if err != nil || !ok {
		return false, err
	}
	c.Reset()
	return true, nil
}

// Reset erases the history without confirmation and reseeds the greeting.
// Front ends with their own confirmation flow call this directly.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.seedGreeting()
	c.render(false)
}

// History returns a copy of the conversation.
func (c *Controller) History() schema.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(schema.Conversation(nil), c.history...)
}

// Sending reports whether a send is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Refresh re-renders the current state, for front ends that attach after
// construction or redraw on resize.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.render(c.sending)
}

// Preferences returns the stored preferences with defaults applied.
func (c *Controller) Preferences() schema.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preferences()
}

// SetStyle persists the reply style. Unrecognised values degrade to the
// default at composition time rather than being rejected here.
func (c *Controller) SetStyle(style string) error {
	return c.store.Set(store.KeyStyle, style)
}

// SetPersona persists the reply persona.
func (c *Controller) SetPersona(persona string) error {
	return c.store.Set(store.KeyPersona, persona)
}

// SetLanguage persists the interface language.
func (c *Controller) SetLanguage(lang string) error {
	return c.store.Set(store.KeyLanguage, lang)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// preferences reads the stored preferences. Missing keys fall back to
// defaults; unrecognised values are normalised.
func (c *Controller) preferences() schema.Preferences {
	prefs := schema.DefaultPreferences()
	if style, ok := c.store.Get(store.KeyStyle); ok {
		prefs.Style = style
	}
	if persona, ok := c.store.Get(store.KeyPersona); ok {
		prefs.Persona = persona
	}
	if lang, ok := c.store.Get(store.KeyLanguage); ok {
		prefs.Language = lang
	}
	return prefs.Normalize()
}

func (c *Controller) identity() schema.Identity {
	if c.host == nil {
		return schema.Identity{}
	}
	return c.host.Identity()
}

// seedGreeting appends the localized greeting and persists it. Caller
// holds the lock (or is the constructor).
func (c *Controller) seedGreeting() {
	c.history.Append(schema.RoleAssistant, compose.Greeting(c.preferences().Language))
	c.saveHistory()
}

// saveHistory mirrors the in-memory history to the store. Persistence
// failures are swallowed; the in-memory state stays authoritative for
// the session.
func (c *Controller) saveHistory() {
	_ = store.SetJSON(c.store, store.KeyHistory, c.history)
}

// render snapshots the state for the renderer. Caller holds the lock.
func (c *Controller) render(typing bool) {
	if c.renderer == nil {
		return
	}
	c.renderer.Render(View{
		Turns:  append(schema.Conversation(nil), c.history...),
		Typing: typing,
	})
}
