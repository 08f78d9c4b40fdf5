/*
Package httpclient implements the companion API client: a JSON chat
endpoint and a multipart image-generation endpoint. Requests are
single-shot with no retries; failures are classified into the taxonomy
defined in the root package.
*/
package httpclient

import (
	// Packages
	client "github.com/mutablelogic/go-client"
	miniapp "github.com/mutablelogic/go-miniapp"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client wraps the base HTTP client with typed methods for the two
// companion API operations.
type Client struct {
	*client.Client
}

var _ miniapp.ChatClient = (*Client)(nil)
var _ miniapp.ImageClient = (*Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a companion API client with the given base URL, e.g.
// "https://miniapp.example.com". Pass client.OptTimeout to bound request
// time; by default requests are not cancelled once issued.
func New(url string, opts ...client.ClientOpt) (*Client, error) {
	c := new(Client)
	if client, err := client.New(append(opts, client.OptEndpoint(url))...); err != nil {
		return nil, err
	} else {
		c.Client = client
	}
	return c, nil
}
