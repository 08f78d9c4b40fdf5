package main

import (
	"fmt"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	chat "github.com/mutablelogic/go-miniapp/pkg/chat"
	host "github.com/mutablelogic/go-miniapp/pkg/host"
	store "github.com/mutablelogic/go-miniapp/pkg/store"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type SendCommand struct {
	Text string `arg:"" help:"Message text"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *SendCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "SendCommand")
	defer func() { endSpan(err) }()

	// One-shot send against the same conversation the interactive chat
	// uses, so history carries across both
	controller := chat.New(client, store.WithPrefix(ctx.store, terminalConversation), host.NewTerminal(nil, nil), nil)
	if err := controller.Send(parent, cmd.Text); err != nil {
		return err
	}

	if history := controller.History(); len(history) > 0 {
		fmt.Println(history[len(history)-1].Text)
	}
	return nil
}
