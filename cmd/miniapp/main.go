package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	zerolog "github.com/rs/zerolog"
	store "github.com/mutablelogic/go-miniapp/pkg/store"
	otel "go.opentelemetry.io/otel"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug   bool `name:"debug" help:"Enable debug output"`
	Verbose bool `name:"verbose" help:"Enable verbose output"`

	// Companion API
	Endpoint string        `name:"url" env:"MINIAPP_URL" default:"http://localhost:8084" help:"Companion API endpoint"`
	Prefix   string        `name:"prefix" env:"MINIAPP_PREFIX" help:"Companion API path prefix"`
	Timeout  time.Duration `name:"timeout" default:"2m" help:"Request timeout"`

	// State
	StateDir string `name:"state" env:"MINIAPP_STATE" help:"Directory for persisted state"`

	// Context
	ctx      context.Context
	store    store.Store
	logger   zerolog.Logger
	tracer   trace.Tracer
	execName string
}

type CLI struct {
	Globals

	// Chat
	Chat ChatCommand `cmd:"" help:"Start an interactive chat session"`
	Send SendCommand `cmd:"" help:"Send one message and print the reply"`

	// Image generation
	Generate GenerateCommand `cmd:"" help:"Generate an image"`
	Modes    ModesCommand    `cmd:"" help:"List image generation modes"`

	// Preferences
	Config ConfigCommand `cmd:"" help:"Show or set preferences"`

	// Server
	Telegram TelegramCommand `cmd:"" help:"Run as a Telegram bot"`

	// Other
	Version VersionCommand `cmd:"" help:"Print version information"`
}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Chat and image generation command line interface"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Create a context cancelled on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx
	cli.Globals.execName = execName()

	// Logging
	level := zerolog.WarnLevel
	if cli.Verbose {
		level = zerolog.InfoLevel
	}
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	cli.Globals.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	// Tracing through the global provider; a no-op unless an exporter
	// is installed
	cli.Globals.tracer = otel.Tracer(cli.Globals.execName)

	// Persisted state
	st, err := cli.Globals.openStore()
	if err != nil {
		cmd.FatalIfErrorf(err)
		return
	}
	cli.Globals.store = st
	defer st.Close()

	// Run the command
	if err := cmd.Run(&cli.Globals); err != nil {
		cmd.FatalIfErrorf(err)
	}
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// statePath returns the state directory, defaulting to the user config
// directory, and creates it when missing.
func (g *Globals) statePath() (string, error) {
	path := g.StateDir
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, g.execName)
	}
	if err := os.MkdirAll(path, 0700); err != nil {
		return "", err
	}
	return path, nil
}

// openStore opens the default single-user store, a JSON file in the
// state directory.
func (g *Globals) openStore() (store.Store, error) {
	path, err := g.statePath()
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(filepath.Join(path, "state.json"))
}

func execName() string {
	name, err := os.Executable()
	if err != nil {
		panic(err)
	}
	return filepath.Base(name)
}
