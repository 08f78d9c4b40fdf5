// Package ui defines the interface between the controllers and the chat
// surfaces that embed them.
//
// Implementations of [ChatUI] adapt a platform (interactive terminal,
// Telegram bot) to a common event-driven model: the front end loops over
// [ChatUI.Receive] and responds through the [Context] attached to each
// event.
package ui

import (
	"context"
	"io"

	// Packages
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACES

// ChatUI is an event source over a chat surface. Callers loop over
// Receive to process incoming user activity.
type ChatUI interface {
	// Receive blocks until the next incoming event, context
	// cancellation, or shutdown. It returns io.EOF when the surface is
	// permanently closed.
	Receive(ctx context.Context) (Event, error)

	// Close releases the surface (terminal state, bot poller).
	Close() error
}

// Context is the conversation a single event belongs to, and the channel
// for responses back into it.
type Context interface {
	// Identity returns the identity of the user who triggered the
	// event. Fields may be empty when the surface cannot identify the
	// user.
	Identity() schema.Identity

	// ConversationID returns a stable identifier for the conversation,
	// used to namespace persisted state.
	ConversationID() string

	// SendText sends a plain text message to the conversation.
	SendText(ctx context.Context, text string) error

	// SendMarkdown sends a Markdown message, rendered natively where
	// the surface supports it and degraded to plain text where not.
	SendMarkdown(ctx context.Context, markdown string) error

	// SendImage sends an image to the conversation, either as inline
	// data or as a URL the surface can fetch.
	SendImage(ctx context.Context, image Image) error

	// SetTyping shows or hides the typing indicator. Surfaces that
	// expire the indicator automatically may ignore the stop call.
	SetTyping(ctx context.Context, typing bool) error
}

///////////////////////////////////////////////////////////////////////////////
// EVENT TYPES

// EventType identifies the kind of incoming event.
type EventType int

const (
	EventText       EventType = iota // Plain message text
	EventCommand                     // Slash command, e.g. "/style short"
	EventAttachment                  // Incoming file or photo
)

// Event is one unit of incoming user activity.
type Event struct {
	// Type identifies what kind of event this is.
	Type EventType

	// Context is the conversation the event belongs to.
	Context Context

	// Text is the message text, or the attachment caption.
	Text string

	// Command is the command name without the leading slash, for
	// EventCommand.
	Command string

	// Args are the command arguments, for EventCommand.
	Args []string

	// Attachment is the received file, for EventAttachment.
	Attachment *Attachment
}

///////////////////////////////////////////////////////////////////////////////
// ATTACHMENT TYPES

// Attachment is a file or photo received from the user.
type Attachment struct {
	// Filename is the original filename, when the surface provides one.
	Filename string

	// Type is the MIME type reported by the surface.
	Type string

	// Data is the attachment content.
	Data io.Reader
}

// Image is an image sent to the user: either a local file path or a URL.
type Image struct {
	// Path is a local file holding the image data.
	Path string

	// URL is a remote reference the surface fetches itself.
	URL string

	// Caption is optional text shown with the image.
	Caption string
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (t EventType) String() string {
	switch t {
	case EventText:
		return "text"
	case EventCommand:
		return "command"
	case EventAttachment:
		return "attachment"
	}
	return "unknown"
}
