package httpclient

import (
	"context"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	miniapp "github.com/mutablelogic/go-miniapp"
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Chat sends a composed prompt to POST /api/chat and returns the reply.
// Transport failures, non-2xx statuses and malformed response bodies are
// all reported as a single error category with a diagnostic message; the
// caller decides how to surface it.
func (c *Client) Chat(ctx context.Context, req schema.ChatRequest) (*schema.ChatResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, miniapp.ErrBadParameter.With("text is required")
	}

	payload, err := client.NewJSONRequest(req)
	if err != nil {
		return nil, err
	}

	var response schema.ChatResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("api", "chat")); err != nil {
		return nil, err
	}

	return &response, nil
}
