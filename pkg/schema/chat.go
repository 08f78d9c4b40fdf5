package schema

import (
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Identity is the host-provided user snapshot included with every request.
// The field names are the wire contract for both endpoints; the server
// reads exactly these keys.
type Identity struct {
	UserID    string `json:"tg_user_id,omitempty"`
	Username  string `json:"tg_username,omitempty"`
	FirstName string `json:"tg_first_name,omitempty"`
}

// ChatRequest is the JSON body for POST /api/chat. Text carries the
// composed prompt document, not the raw user input; the preference fields
// are passed alongside as raw context.
type ChatRequest struct {
	Text    string `json:"text"`
	Lang    string `json:"lang"`
	Style   string `json:"style"`
	Persona string `json:"persona"`
	Identity
}

// ChatResponse is the JSON body returned by POST /api/chat. Additional
// fields are ignored.
type ChatResponse struct {
	Reply string `json:"reply"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Text returns the reply with surrounding whitespace removed.
func (r ChatResponse) Text() string {
	return strings.TrimSpace(r.Reply)
}
