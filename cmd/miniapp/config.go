package main

import (
	"fmt"
	"strings"

	// Packages
	miniapp "github.com/mutablelogic/go-miniapp"
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
	store "github.com/mutablelogic/go-miniapp/pkg/store"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ConfigCommand struct {
	Key   string `arg:"" optional:"" help:"Preference name (style, persona, lang, theme)"`
	Value string `arg:"" optional:"" help:"New value"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// prefKeys maps preference names to store keys and their accepted values.
// An empty value list means any value is accepted.
var prefKeys = map[string]struct {
	key    string
	values []string
}{
	"style":   {store.KeyStyle, []string{schema.StyleShort, schema.StyleSteps, schema.StyleDetail}},
	"persona": {store.KeyPersona, []string{schema.PersonaFriendly, schema.PersonaFun, schema.PersonaStrict, schema.PersonaSmart}},
	"lang":    {store.KeyLanguage, schema.Languages()},
	"theme":   {store.KeyTheme, []string{"light", "dark"}},
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ConfigCommand) Run(ctx *Globals) error {
	view := store.WithPrefix(ctx.store, terminalConversation)

	// No arguments: show all preferences
	if cmd.Key == "" {
		for _, name := range []string{"style", "persona", "lang", "theme"} {
			fmt.Printf("%-8s %s\n", name, prefValue(view, name))
		}
		return nil
	}

	pref, ok := prefKeys[cmd.Key]
	if !ok {
		return miniapp.ErrBadParameter.Withf("unknown preference %q", cmd.Key)
	}

	// Key only: show the value
	if cmd.Value == "" {
		fmt.Println(prefValue(view, cmd.Key))
		return nil
	}

	// Set
	value := strings.ToLower(cmd.Value)
	if len(pref.values) > 0 && !containsValue(pref.values, value) {
		return miniapp.ErrBadParameter.Withf("%s must be one of %s", cmd.Key, strings.Join(pref.values, ", "))
	}
	return view.Set(pref.key, value)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// prefValue returns the stored value with defaults applied the same way
// the controllers apply them.
func prefValue(view store.Store, name string) string {
	if value, ok := view.Get(prefKeys[name].key); ok {
		return value
	}
	switch name {
	case "style":
		return schema.DefaultStyle
	case "persona":
		return schema.DefaultPersona
	case "lang":
		return schema.DefaultLanguage
	case "theme":
		return "light"
	}
	return ""
}

func containsValue(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
