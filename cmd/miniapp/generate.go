package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	miniapp "github.com/mutablelogic/go-miniapp"
	host "github.com/mutablelogic/go-miniapp/pkg/host"
	imagegen "github.com/mutablelogic/go-miniapp/pkg/imagegen"
	store "github.com/mutablelogic/go-miniapp/pkg/store"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type GenerateCommand struct {
	Prompt  []string `arg:"" optional:"" help:"Prompt text"`
	Mode    string   `name:"mode" help:"Generation mode (see the modes command)" optional:""`
	File    string   `name:"file" type:"existingfile" help:"Input image for image-to-image modes" optional:""`
	Out     string   `name:"out" help:"Write the image to this path" optional:""`
	Catalog string   `name:"catalog" help:"Path to a mode catalog file" optional:""`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *GenerateCommand) Run(ctx *Globals) (err error) {
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	// OTEL
	parent, endSpan := otel.StartSpan(ctx.tracer, ctx.ctx, "GenerateCommand")
	defer func() { endSpan(err) }()

	catalog, err := loadCatalog(cmd.Catalog)
	if err != nil {
		return err
	}

	// Capture the terminal result view; the controller returns to the
	// input state after rendering a failure
	var result *imagegen.Preview
	var message string
	renderer := imagegen.RendererFunc(func(view imagegen.View) {
		switch view.Status {
		case imagegen.StatusResultReady:
			result = view.Result
		case imagegen.StatusFailed:
			message = view.Message
		}
	})

	st := store.WithPrefix(ctx.store, terminalConversation)
	controller, err := imagegen.New(client, st, host.NewTerminal(nil, nil), renderer, catalog)
	if err != nil {
		return err
	}
	defer controller.Close()

	if cmd.Mode != "" {
		if _, ok := catalog.Lookup(cmd.Mode); !ok {
			return miniapp.ErrBadParameter.Withf("unknown mode %q", cmd.Mode)
		}
		controller.SelectMode(cmd.Mode)
	}
	if cmd.File != "" {
		data, err := os.ReadFile(cmd.File)
		if err != nil {
			return err
		}
		if err := controller.AttachFile(miniapp.NewAttachment(cmd.File, data)); err != nil {
			return err
		}
	}
	if prompt := strings.TrimSpace(strings.Join(cmd.Prompt, " ")); prompt != "" {
		controller.SetPrompt(prompt)
	}

	if err := controller.Generate(parent); err != nil {
		if message != "" {
			return fmt.Errorf("%s", message)
		}
		return err
	}
	if result == nil {
		return miniapp.ErrNoImage
	}

	return cmd.write(result)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// write copies the result to the output path. Without --out a URL result
// is printed as-is and an inline result lands in the working directory,
// since the preview file is released when the controller closes.
func (cmd *GenerateCommand) write(result *imagegen.Preview) error {
	if cmd.Out == "" {
		if path := result.Path(); path != "" {
			cmd.Out = filepath.Base(path)
		} else {
			fmt.Println(result.Href())
			return nil
		}
	}

	var src io.ReadCloser
	if path := result.Path(); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		src = file
	} else {
		resp, err := http.Get(result.Href())
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return miniapp.ErrGenerationFailed.With(resp.Status)
		}
		src = resp.Body
	}
	defer src.Close()

	dst, err := os.Create(cmd.Out)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	fmt.Println(cmd.Out)
	return nil
}
