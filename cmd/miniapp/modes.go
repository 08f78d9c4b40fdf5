package main

import (
	"fmt"

	// Packages
	imagegen "github.com/mutablelogic/go-miniapp/pkg/imagegen"
	command "github.com/mutablelogic/go-miniapp/pkg/ui/command"
	table "github.com/mutablelogic/go-miniapp/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ModesCommand struct {
	Catalog string `name:"catalog" help:"Path to a mode catalog file" optional:""`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ModesCommand) Run(ctx *Globals) error {
	catalog, err := loadCatalog(cmd.Catalog)
	if err != nil {
		return err
	}
	fmt.Println(table.Render(command.ModesTable{Catalog: catalog}))
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// loadCatalog reads a catalog file, or returns the built-in catalog when
// no path is given.
func loadCatalog(path string) (imagegen.Catalog, error) {
	if path == "" {
		return imagegen.DefaultCatalog(), nil
	}
	return imagegen.LoadCatalog(path)
}
