/*
Package miniapp is a client for the companion chat and image-generation
HTTP API. It contains the shared domain types: the error taxonomy, the
attachment type for user-supplied images, and the client interfaces
implemented by pkg/httpclient and consumed by the controllers in
pkg/chat and pkg/imagegen.
*/
package miniapp

import (
	"context"

	// Packages
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ChatClient is the interface that wraps the conversational endpoint.
type ChatClient interface {
	// Chat sends a composed prompt with preference and identity context,
	// and returns the assistant reply. A single request, no retries.
	Chat(ctx context.Context, req schema.ChatRequest) (*schema.ChatResponse, error)
}

// ImageClient is the interface that wraps the image-generation endpoint.
type ImageClient interface {
	// GenerateImage requests an image for the given prompt and mode. The
	// image argument is the optional input attachment, which may be nil
	// for text-to-image modes. The response is normalised into a single
	// ImageResult regardless of which wire shape the server used.
	GenerateImage(ctx context.Context, req schema.ImageRequest, image *Attachment) (*schema.ImageResult, error)
}
