/*
Package imagegen implements the image generation controller: mode
selection from a priced catalog, prompt and input-image state, and the
generation lifecycle from input to result. Like the chat controller it
renders through a Renderer interface so the terminal and Telegram front
ends share the same state machine.
*/
package imagegen

import (
	"context"
	"strings"
	"sync"

	// Packages
	uuid "github.com/google/uuid"
	miniapp "github.com/mutablelogic/go-miniapp"
	host "github.com/mutablelogic/go-miniapp/pkg/host"
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
	store "github.com/mutablelogic/go-miniapp/pkg/store"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Status is the generation screen state.
type Status int

const (
	// StatusIdle means no mode is selected; the mode list is shown.
	StatusIdle Status = iota

	// StatusAwaitingInput means a mode is selected and the prompt and
	// image inputs are shown.
	StatusAwaitingInput

	// StatusGenerating means a request is in flight.
	StatusGenerating

	// StatusResultReady means the last generation produced an image.
	StatusResultReady

	// StatusFailed is the transient state rendered when a generation
	// fails; inputs are kept so the user can retry.
	StatusFailed
)

// View is an immutable projection of the controller state for rendering.
type View struct {
	Status     Status
	Session    string
	Mode       *Mode
	Prompt     string
	Attachment *Preview
	Result     *Preview
	Message    string
}

// Renderer receives a View after every state change.
type Renderer interface {
	Render(View)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(View)

func (f RendererFunc) Render(view View) {
	f(view)
}

// Controller is the image generation controller. All methods are safe for
// concurrent use; Generate while a generation is in flight is a no-op.
type Controller struct {
	mu         sync.Mutex
	client     miniapp.ImageClient
	store      store.Store
	host       host.Host
	renderer   Renderer
	catalog    Catalog
	mode       *Mode
	prompt     string
	attachment *miniapp.Attachment
	preview    *Preview
	result     *Preview
	session    string
	status     Status
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a controller over the given catalog. When the store holds a
// last-used mode that is still in the catalog, it is restored and the
// controller starts awaiting input; otherwise it starts idle on the mode
// list.
func New(client miniapp.ImageClient, st store.Store, h host.Host, renderer Renderer, catalog Catalog) (*Controller, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		client:   client,
		store:    st,
		host:     h,
		renderer: renderer,
		catalog:  catalog,
		status:   StatusIdle,
	}
	if id, ok := st.Get(store.KeyImageMode); ok {
		if mode, ok := catalog.Lookup(id); ok {
			c.mode = &mode
			c.status = StatusAwaitingInput
		}
	}
	return c, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Modes returns the mode catalog.
func (c *Controller) Modes() Catalog {
	return c.catalog
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SelectMode selects a generation mode by identifier and persists it as
// the last-used mode. Unknown identifiers leave the state unchanged. Any
// previous result is discarded; prompt and attachment are kept unless
// the new mode takes no input image.
func (c *Controller) SelectMode(id string) {
	mode, ok := c.catalog.Lookup(id)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = &mode
	_ = c.store.Set(store.KeyImageMode, mode.ID)
	if !mode.NeedsImage {
		c.dropAttachment()
	}
	c.dropResult()
	c.status = StatusAwaitingInput
	c.render("")
}

// SetPrompt updates the prompt text.
func (c *Controller) SetPrompt(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = text
	if c.status == StatusAwaitingInput {
		c.render("")
	}
}

// AttachFile validates and attaches an input image, replacing any
// previous one. It fails when no mode is selected, when the selected mode
// takes no input image, or when the attachment is not a usable image.
func (c *Controller) AttachFile(attachment *miniapp.Attachment) error {
	if attachment == nil {
		return miniapp.ErrBadParameter.With("missing attachment")
	}
	if err := attachment.ValidateImage(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == nil {
		return miniapp.ErrBadParameter.With("no mode selected")
	}
	if !c.mode.NeedsImage {
		return miniapp.ErrBadParameter.Withf("mode %q takes no input image", c.mode.ID)
	}

	preview, err := newFilePreview(attachment.Data(), attachment.Type())
	if err != nil {
		return err
	}
	c.dropAttachment()
	c.attachment = attachment
	c.preview = preview
	c.render("")
	return nil
}

// RemoveAttachment detaches the input image and releases its preview.
func (c *Controller) RemoveAttachment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropAttachment()
	c.render("")
}

// Generate runs a generation with the current mode, prompt and
// attachment. Precondition failures and request failures render a
// transient failed view, then return to awaiting input with all inputs
// intact. A generation issued while one is in flight is silently
// ignored.
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusGenerating {
		c.mu.Unlock()
		return nil
	}
	if c.mode == nil {
		c.mu.Unlock()
		return miniapp.ErrBadParameter.With("no mode selected")
	}

	mode := *c.mode
	prompt := strings.TrimSpace(c.prompt)
	attachment := c.attachment

	// Preconditions depend on the mode: image modes need an image,
	// text modes need a prompt
	var precondition error
	if mode.NeedsImage && attachment == nil {
		precondition = miniapp.ErrImageRequired
	} else if !mode.NeedsImage && prompt == "" {
		precondition = miniapp.ErrEmptyPrompt
	}
	if precondition != nil {
		c.fail(precondition)
		c.mu.Unlock()
		return precondition
	}

	c.session = uuid.NewString()
	c.status = StatusGenerating
	c.dropResult()
	c.render("")
	c.mu.Unlock()

	req := schema.NewImageRequest(mode.ID, prompt)
	if attachment != nil && mode.Strength > 0 {
		req.Strength = mode.Strength
	}
	if c.host != nil {
		req.Identity = c.host.Identity()
	}
	result, err := c.client.GenerateImage(ctx, req, attachment)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return err
	}

	preview, err := c.resultPreview(result)
	if err != nil {
		c.fail(err)
		return err
	}
	c.result = preview
	c.status = StatusResultReady
	c.render("")
	return nil
}

// Reset discards the result and returns to awaiting input, keeping the
// mode, prompt and attachment for another run.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropResult()
	if c.mode != nil {
		c.status = StatusAwaitingInput
	} else {
		c.status = StatusIdle
	}
	c.render("")
}

// Refresh re-renders the current state.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.render("")
}

// Close releases all preview resources.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropAttachment()
	c.dropResult()
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// fail renders the transient failed view, then returns to awaiting input
// with inputs intact. Caller holds the lock.
func (c *Controller) fail(err error) {
	lang := schema.DefaultLanguage
	if stored, ok := c.store.Get(store.KeyLanguage); ok && schema.IsSupportedLanguage(stored) {
		lang = stored
	}
	c.status = StatusFailed
	c.render(FailureMessage(lang, err))
	c.status = StatusAwaitingInput
}

// resultPreview converts a normalised result into a preview: inline data
// goes to a temporary file, URL references stay links. Caller holds the
// lock.
func (c *Controller) resultPreview(result *schema.ImageResult) (*Preview, error) {
	if result.Inline() {
		return newFilePreview(result.Data, result.Mime)
	}
	return newLinkPreview(result.Href), nil
}

// dropAttachment releases the input image and its preview. Caller holds
// the lock.
func (c *Controller) dropAttachment() {
	if c.preview != nil {
		_ = c.preview.Release()
		c.preview = nil
	}
	c.attachment = nil
}

// dropResult releases the result preview. Caller holds the lock.
func (c *Controller) dropResult() {
	if c.result != nil {
		_ = c.result.Release()
		c.result = nil
	}
}

// render snapshots the state for the renderer. Caller holds the lock.
func (c *Controller) render(message string) {
	if c.renderer == nil {
		return
	}
	view := View{
		Status:     c.status,
		Session:    c.session,
		Prompt:     c.prompt,
		Attachment: c.preview,
		Result:     c.result,
		Message:    message,
	}
	if c.mode != nil {
		mode := *c.mode
		view.Mode = &mode
	}
	c.renderer.Render(view)
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAwaitingInput:
		return "awaiting_input"
	case StatusGenerating:
		return "generating"
	case StatusResultReady:
		return "result_ready"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}
