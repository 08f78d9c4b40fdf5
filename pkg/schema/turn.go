package schema

import (
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Turn role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxTurns is the upper bound on persisted conversation history. When an
// append would exceed it, the oldest turns are dropped first.
const MaxTurns = 120

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Turn is one message in a conversation, authored by the user or the
// assistant. Turns are immutable once appended.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Conversation is an ordered sequence of turns. Insertion order is the
// conversation order.
type Conversation []Turn

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Append adds a turn to the conversation and returns true. Turns with
// empty or whitespace-only text are dropped and false is returned. After
// a successful append the conversation holds at most MaxTurns turns.
func (c *Conversation) Append(role, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	*c = append(*c, Turn{Role: role, Text: text})
	if len(*c) > MaxTurns {
		*c = (*c)[len(*c)-MaxTurns:]
	}
	return true
}

// Last returns the most recent n turns, or the whole conversation when it
// holds fewer than n.
func (c Conversation) Last(n int) Conversation {
	if n <= 0 || len(c) <= n {
		return c
	}
	return c[len(c)-n:]
}

// Compact returns a copy of the conversation with malformed turns (empty
// text or unknown role) removed. Used when loading persisted history of
// uncertain shape.
func (c Conversation) Compact() Conversation {
	result := make(Conversation, 0, len(c))
	for _, turn := range c {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			continue
		}
		result = append(result, turn)
	}
	return result
}
