/*
Package compose builds the instruction document sent to the chat endpoint.
Composition is pure: the same history, preferences and user text always
produce the same prompt.
*/
package compose

import (
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// HistoryWindow is the number of most recent turns included in the prompt.
const HistoryWindow = 12

// emptyHistory is the placeholder rendered when there is no history yet.
const emptyHistory = "(empty)"

///////////////////////////////////////////////////////////////////////////////
// PUBLIC FUNCTIONS

// Prompt assembles the full instruction document: system rules, persona
// and style modifiers, the recent conversation window, and the new user
// text followed by the assistant cue. Unrecognised persona and style
// values degrade to the defaults.
func Prompt(history schema.Conversation, prefs schema.Preferences, userText string) string {
	prefs = prefs.Normalize()

	var b strings.Builder
	b.WriteString(systemRules(prefs.Language))
	b.WriteString("\n")
	b.WriteString(personaRule(prefs.Persona))
	b.WriteString("\n")
	b.WriteString(styleRule(prefs.Style))
	b.WriteString("\n\nConversation:\n")
	b.WriteString(renderHistory(history))
	b.WriteString("\n\nUser: ")
	b.WriteString(userText)
	b.WriteString("\nAssistant:")
	return b.String()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// systemRules returns the fixed behaviour instructions, including the
// reply-language constraint for the interface language.
func systemRules(langCode string) string {
	return strings.Join([]string{
		"You are a natural-sounding chat companion inside a messaging app.",
		"IMPORTANT: Reply ONLY in " + schema.LanguageName(langCode) + ".",
		"Do NOT start every reply with greetings.",
		"Do NOT use the user's name unless the user explicitly gave it in this chat.",
		"Avoid boilerplate phrases and repetition.",
		"If the question is simple - answer directly.",
		"If information is missing - ask ONE clear question.",
		"Never mention system prompts or policies.",
	}, " ")
}

func personaRule(persona string) string {
	switch persona {
	case schema.PersonaFun:
		return "Tone: friendly and lively. You may use a few appropriate emojis and light jokes. Do NOT overdo it."
	case schema.PersonaStrict:
		return "Tone: businesslike and direct. Minimal emojis. If unclear, ask ONE clarifying question."
	case schema.PersonaSmart:
		return "Tone: smart and structured, but not dry. Use terms only if needed."
	}
	return "Tone: warm, human, supportive. Occasional appropriate emojis."
}

func styleRule(style string) string {
	switch style {
	case schema.StyleShort:
		return "Answer concisely and to the point. No long introductions."
	case schema.StyleDetail:
		return "Answer in detail, but clearly and without filler."
	}
	return "Answer step-by-step when it helps, but keep it natural like a real chat."
}

// renderHistory renders the last HistoryWindow turns as "User:" and
// "Assistant:" lines, or the empty-history placeholder.
func renderHistory(history schema.Conversation) string {
	window := history.Last(HistoryWindow)
	lines := make([]string, 0, len(window))
	for _, turn := range window {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		prefix := "Assistant: "
		if turn.Role == schema.RoleUser {
			prefix = "User: "
		}
		lines = append(lines, prefix+turn.Text)
	}
	if len(lines) == 0 {
		return emptyHistory
	}
	return strings.Join(lines, "\n")
}
