package main

import (
	"os"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	httpclient "github.com/mutablelogic/go-miniapp/pkg/httpclient"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Client returns an httpclient.Client configured from the global flags.
func (g *Globals) Client() (*httpclient.Client, error) {
	opts := []client.ClientOpt{}
	if g.Debug || g.Verbose {
		opts = append(opts, client.OptTrace(os.Stderr, g.Verbose))
	}
	if g.tracer != nil {
		opts = append(opts, client.OptTracer(g.tracer))
	}
	if g.Timeout > 0 {
		opts = append(opts, client.OptTimeout(g.Timeout))
	}

	endpoint := strings.TrimSuffix(g.Endpoint, "/")
	if g.Prefix != "" {
		endpoint += types.NormalisePath(g.Prefix)
	}
	return httpclient.New(endpoint, opts...)
}
