// Package telegram implements [ui.ChatUI] for Telegram bots using
// telebot v4. Incoming text, commands, photos and image documents become
// events; responses are sent as messages, entity-formatted Markdown and
// photos.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
	ui "github.com/mutablelogic/go-miniapp/pkg/ui"
	tele "gopkg.in/telebot.v4"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Telegram implements [ui.ChatUI] for the Telegram Bot API.
type Telegram struct {
	bot    *tele.Bot
	events chan ui.Event
	done   chan struct{}
}

// telegramContext implements [ui.Context] for one Telegram conversation.
type telegramContext struct {
	api  tele.API
	chat *tele.Chat
	user *tele.User
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a Telegram surface with the given bot token. Long-polling
// starts in a background goroutine and the surface returns immediately.
func New(token string) (*Telegram, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	t := &Telegram{
		bot:    bot,
		events: make(chan ui.Event, 32),
		done:   make(chan struct{}),
	}

	bot.Handle(tele.OnText, t.onText)
	bot.Handle(tele.OnPhoto, t.onPhoto)
	bot.Handle(tele.OnDocument, t.onDocument)

	go func() {
		bot.Start()
		close(t.done)
	}()

	return t, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Receive blocks until the next incoming event, context cancellation, or
// shutdown. It returns io.EOF when the bot is stopped.
func (t *Telegram) Receive(ctx context.Context) (ui.Event, error) {
	select {
	case evt := <-t.events:
		return evt, nil
	case <-ctx.Done():
		return ui.Event{}, ctx.Err()
	case <-t.done:
		return ui.Event{}, io.EOF
	}
}

// Close stops the bot poller and waits for it to finish.
func (t *Telegram) Close() error {
	t.bot.Stop()
	<-t.done
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// TELEBOT HANDLERS

func (t *Telegram) onText(c tele.Context) error {
	text := c.Text()
	evt := ui.Event{
		Type:    ui.EventText,
		Context: newContext(c),
		Text:    text,
	}
	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		evt.Type = ui.EventCommand
		evt.Command = strings.TrimPrefix(fields[0], "/")
		evt.Args = fields[1:]
	}
	t.emit(c, evt)
	return nil
}

func (t *Telegram) onPhoto(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return nil
	}
	return t.emitAttachment(c, &msg.Photo.File, "photo.jpg", "image/jpeg", msg.Caption)
}

// onDocument accepts image documents, so originals sent "as file" still
// work. Other document types are ignored.
func (t *Telegram) onDocument(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Document == nil {
		return nil
	}
	doc := msg.Document
	if !strings.HasPrefix(doc.MIME, "image/") {
		return nil
	}
	return t.emitAttachment(c, &doc.File, doc.FileName, doc.MIME, msg.Caption)
}

// emitAttachment downloads the file into memory before emitting, since
// telebot closes the response body when the handler returns.
func (t *Telegram) emitAttachment(c tele.Context, file *tele.File, filename, mime, caption string) error {
	rc, err := c.Bot().File(file)
	if err != nil {
		c.Send(fmt.Sprintf("Error downloading file: %v", err)) //nolint:errcheck
		return fmt.Errorf("telegram: downloading file: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("telegram: reading file: %w", err)
	}

	t.emit(c, ui.Event{
		Type:    ui.EventAttachment,
		Context: newContext(c),
		Text:    caption,
		Attachment: &ui.Attachment{
			Filename: filename,
			Type:     mime,
			Data:     bytes.NewReader(data),
		},
	})
	return nil
}

func (t *Telegram) emit(c tele.Context, evt ui.Event) {
	select {
	case t.events <- evt:
	default:
		// Consumer is not keeping up; drop rather than block the poller
		c.Send("Busy, try again in a moment") //nolint:errcheck
	}
}

///////////////////////////////////////////////////////////////////////////////
// CONTEXT

func newContext(c tele.Context) *telegramContext {
	return &telegramContext{
		api:  c.Bot(),
		chat: c.Chat(),
		user: c.Sender(),
	}
}

// Identity returns the sender identity in the form the companion API
// expects.
func (c *telegramContext) Identity() schema.Identity {
	if c.user == nil {
		return schema.Identity{}
	}
	return schema.Identity{
		UserID:    strconv.FormatInt(c.user.ID, 10),
		Username:  c.user.Username,
		FirstName: c.user.FirstName,
	}
}

// ConversationID returns the Telegram chat identifier.
func (c *telegramContext) ConversationID() string {
	if c.chat != nil {
		return strconv.FormatInt(c.chat.ID, 10)
	}
	return ""
}

func (c *telegramContext) SendText(_ context.Context, text string) error {
	_, err := c.api.Send(c.chat, text)
	return err
}

// SendMarkdown converts Markdown to Telegram entities and sends it.
func (c *telegramContext) SendMarkdown(_ context.Context, markdown string) error {
	text, entities := markdownToEntities(markdown)
	if len(entities) > 0 {
		_, err := c.api.Send(c.chat, text, entities)
		return err
	}
	_, err := c.api.Send(c.chat, text)
	return err
}

// SendImage sends an image as a photo, from a local file or a URL.
func (c *telegramContext) SendImage(_ context.Context, image ui.Image) error {
	photo := &tele.Photo{Caption: image.Caption}
	if image.Path != "" {
		photo.File = tele.FromDisk(image.Path)
	} else if image.URL != "" {
		photo.File = tele.FromURL(image.URL)
	} else {
		return nil
	}
	_, err := c.api.Send(c.chat, photo)
	return err
}

// SetTyping sends the "typing" chat action. Telegram expires the action
// on its own, so the stop call is ignored.
func (c *telegramContext) SetTyping(_ context.Context, typing bool) error {
	if typing {
		return c.api.Notify(c.chat, tele.Typing)
	}
	return nil
}
