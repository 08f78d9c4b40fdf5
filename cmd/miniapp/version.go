package main

import (
	"fmt"

	// Packages
	version "github.com/mutablelogic/go-miniapp/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type VersionCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *VersionCommand) Run(ctx *Globals) error {
	fmt.Print(version.String(ctx.execName))
	return nil
}
