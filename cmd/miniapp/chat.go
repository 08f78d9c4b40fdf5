package main

import (
	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	compose "github.com/mutablelogic/go-miniapp/pkg/compose"
	schema "github.com/mutablelogic/go-miniapp/pkg/schema"
	store "github.com/mutablelogic/go-miniapp/pkg/store"
	bubbletea "github.com/mutablelogic/go-miniapp/pkg/ui/bubbletea"
	command "github.com/mutablelogic/go-miniapp/pkg/ui/command"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ChatCommand struct {
	Catalog string `name:"catalog" help:"Path to a mode catalog file" optional:""`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// terminalConversation is the conversation identifier for the local
// terminal, and the store namespace its state is kept under.
const terminalConversation = "terminal"

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ChatCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "ChatCommand")
	defer func() { endSpan(err) }()

	catalog, err := loadCatalog(cmd.Catalog)
	if err != nil {
		return err
	}

	term, err := bubbletea.New()
	if err != nil {
		return err
	}
	defer term.Close()

	// Show the persisted conversation before handling new input. The
	// dispatcher session delivers only turns appended after this point.
	view := store.WithPrefix(ctx.store, terminalConversation)
	var history schema.Conversation
	if store.GetJSON(view, store.KeyHistory, &history) {
		history = history.Compact()
	}
	if len(history) == 0 {
		lang := schema.DefaultLanguage
		if code, ok := view.Get(store.KeyLanguage); ok && schema.IsSupportedLanguage(code) {
			lang = code
		}
		term.AppendHistory(schema.RoleAssistant, compose.Greeting(lang))
	}
	for _, turn := range history {
		term.AppendHistory(turn.Role, turn.Text)
	}

	return command.NewDispatcher(client, client, ctx.store, catalog, ctx.logger).Run(parent, term)
}
