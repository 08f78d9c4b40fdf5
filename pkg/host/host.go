/*
Package host abstracts the surface the Mini App runs inside. The Telegram
front end answers confirmations with native popups and knows who the user
is; the terminal host falls back to stdin prompts and the local account.
*/
package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACE

// Host is the embedding surface for the controllers: it answers
// confirmation prompts, identifies the user, and opens external links.
type Host interface {
	// Identity returns the user identity forwarded with API requests.
	// Fields may be empty when the surface cannot identify the user.
	Identity() schema.Identity

	// Confirm asks the user a yes/no question and returns the answer.
	Confirm(ctx context.Context, message string) (bool, error)

	// OpenLink opens an external URL on the embedding surface.
	OpenLink(url string) error
}

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Terminal is a Host backed by the controlling terminal. Confirmations
// are y/N prompts on stdin and identity comes from the local account.
type Terminal struct {
	identity schema.Identity
	r        io.Reader
	w        io.Writer
}

var _ Host = (*Terminal)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTerminal returns a terminal host reading from r and writing prompts
// to w. Pass nil to use stdin and stderr.
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stderr
	}
	identity := schema.Identity{}
	if u, err := user.Current(); err == nil {
		identity.Username = u.Username
		identity.FirstName = u.Name
		identity.UserID = u.Uid
	}
	return &Terminal{identity: identity, r: r, w: w}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (t *Terminal) Identity() schema.Identity {
	return t.identity
}

// Confirm prints the message and reads a single line; only "y" and "yes"
// count as confirmation.
func (t *Terminal) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(t.w, "%s [y/N] ", message)
	line, err := bufio.NewReader(t.r).ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// OpenLink prints the URL; a terminal cannot navigate for the user.
func (t *Terminal) OpenLink(url string) error {
	_, err := fmt.Fprintln(t.w, url)
	return err
}
