package main

import (
	"context"
	"errors"
	"path/filepath"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	store "github.com/mutablelogic/go-miniapp/pkg/store"
	command "github.com/mutablelogic/go-miniapp/pkg/ui/command"
	telegram "github.com/mutablelogic/go-miniapp/pkg/ui/telegram"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type TelegramCommand struct {
	Token   string `name:"token" env:"TELEGRAM_TOKEN" required:"" help:"Telegram bot token"`
	Catalog string `name:"catalog" help:"Path to a mode catalog file" optional:""`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *TelegramCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "TelegramCommand")
	defer func() { endSpan(err) }()

	catalog, err := loadCatalog(cmd.Catalog)
	if err != nil {
		return err
	}

	// Conversation state for many chats goes in pebble rather than the
	// single-user file store
	path, err := ctx.statePath()
	if err != nil {
		return err
	}
	st, err := store.NewPebbleStore(filepath.Join(path, "telegram"))
	if err != nil {
		return err
	}
	defer st.Close()

	bot, err := telegram.New(cmd.Token)
	if err != nil {
		return err
	}

	dispatcher := command.NewDispatcher(client, client, st, catalog, ctx.logger)
	ctx.logger.Info().Msg("telegram bot started")

	g, child := errgroup.WithContext(parent)
	g.Go(func() error {
		return dispatcher.Run(child, bot)
	})
	g.Go(func() error {
		<-child.Done()
		return bot.Close()
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
