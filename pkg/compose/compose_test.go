package compose_test

import (
	"strings"
	"testing"

	"github.com/mutablelogic/go-miniapp/pkg/compose"
	"github.com/mutablelogic/go-miniapp/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestPromptDefaults(t *testing.T) {
	assert := assert.New(t)

	// Unrecognised style and persona degrade to steps/friendly
	prompt := compose.Prompt(nil, schema.Preferences{Style: "unknown", Persona: "unknown", Language: "en"}, "hi")

	assert.Contains(prompt, "Answer step-by-step when it helps")
	assert.Contains(prompt, "Tone: warm, human, supportive.")
	assert.Contains(prompt, "Reply ONLY in English.")
}

func TestPromptOrdering(t *testing.T) {
	assert := assert.New(t)

	var history schema.Conversation
	history.Append(schema.RoleUser, "what is go")
	history.Append(schema.RoleAssistant, "a programming language")

	prefs := schema.Preferences{Style: schema.StyleShort, Persona: schema.PersonaStrict, Language: "en"}
	prompt := compose.Prompt(history, prefs, "tell me more")

	// Sections appear in order: rules, persona, style, conversation, cue
	rules := strings.Index(prompt, "You are a natural-sounding chat companion")
	persona := strings.Index(prompt, "Tone: businesslike and direct.")
	style := strings.Index(prompt, "Answer concisely and to the point.")
	convo := strings.Index(prompt, "Conversation:\nUser: what is go\nAssistant: a programming language")
	cue := strings.Index(prompt, "User: tell me more\nAssistant:")

	assert.Equal(0, rules)
	assert.Greater(persona, rules)
	assert.Greater(style, persona)
	assert.Greater(convo, style)
	assert.Greater(cue, convo)
	assert.True(strings.HasSuffix(prompt, "Assistant:"))
}

func TestPromptEmptyHistory(t *testing.T) {
	assert := assert.New(t)

	prompt := compose.Prompt(nil, schema.DefaultPreferences(), "hi")
	assert.Contains(prompt, "Conversation:\n(empty)")
}

func TestPromptHistoryWindow(t *testing.T) {
	assert := assert.New(t)

	var history schema.Conversation
	for i := 0; i < 30; i++ {
		history.Append(schema.RoleUser, "message number "+strings.Repeat("x", i+1))
	}

	prompt := compose.Prompt(history, schema.DefaultPreferences(), "hi")

	// Only the last 12 turns are rendered
	assert.NotContains(prompt, "message number "+strings.Repeat("x", 18)+"\n")
	assert.Contains(prompt, "message number "+strings.Repeat("x", 19))
	assert.Contains(prompt, "message number "+strings.Repeat("x", 30))
}

func TestGreeting(t *testing.T) {
	assert := assert.New(t)

	assert.Contains(compose.Greeting("en"), "Hey!")
	assert.Contains(compose.Greeting("ru"), "Привет!")
	// Unknown language falls back to the default
	assert.Equal(compose.Greeting("ru"), compose.Greeting("xx"))
}

func TestErrorTurn(t *testing.T) {
	anError := assert.AnError
	assert := assert.New(t)

	turn := compose.ErrorTurn("en", anError)
	assert.True(strings.HasPrefix(turn, "❌ Error: "))
	assert.Contains(turn, anError.Error())
}

func TestNoAnswer(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("(no answer)", compose.NoAnswer("en"))
	assert.Equal("(нет ответа)", compose.NoAnswer("ru"))
}
