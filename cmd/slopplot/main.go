// Command slopplot asks a language model for plotting code and optionally runs it.
//
// Usage:
//
//	slopplot generate "bar chart of sales" --data '{"a":1,"b":2}' --model openai/gpt-4 --return-code
//	slopplot generate "scatter of heights" --data-file heights.json --flavor plotly --run-code --out fig.json
//	slopplot providers
package main

import (
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"

	slopplot "github.com/haowjy/slopplot-go"
	"github.com/haowjy/slopplot-go/executor/python"
	"github.com/haowjy/slopplot-go/internal/config"
	"github.com/haowjy/slopplot-go/internal/envfile"
	"github.com/haowjy/slopplot-go/providers/builtin"
)

// CLI is the root command.
type CLI struct {
	Config  string `help:"Config file (default ~/.config/slopplot/config.yaml)" type:"path"`
	Verbose bool   `short:"v" help:"Log pipeline steps to stderr"`

	Generate  GenerateCmd  `cmd:"" help:"Generate plotting code for a prompt and data"`
	Providers ProvidersCmd `cmd:"" help:"List known providers and whether they are usable"`
}

func main() {
	log.SetFlags(0)

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("slopplot"),
		kong.Description("Turn a prompt and some data into matplotlib or plotly code."),
		kong.UsageOnError(),
	)

	if _, err := envfile.Load(); err != nil {
		log.Printf("[SLOPPLOT] ignoring .env: %v", err)
	}

	a, err := newApp(cli, os.Stdout, os.Stderr)
	kctx.FatalIfErrorf(err)
	kctx.FatalIfErrorf(kctx.Run(a))
}

// app carries the wired dependencies into each command.
type app struct {
	settings *config.Settings
	registry *slopplot.ProviderRegistry
	catalog  *slopplot.Catalog
	executor slopplot.Executor
	logger   *log.Logger
	stdout   io.Writer
}

func newApp(cli CLI, stdout, stderr io.Writer) (*app, error) {
	settings, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}

	catalog := slopplot.GetCatalog()
	if settings.CatalogFile != "" {
		if err := catalog.LoadCatalogFromFile(settings.CatalogFile); err != nil {
			return nil, err
		}
	}

	logger := log.New(io.Discard, "", 0)
	if cli.Verbose {
		logger = log.New(stderr, "", log.LstdFlags)
	}

	executor := python.NewExecutor(settings.PythonConfig())
	executor.SetLogger(logger)

	return &app{
		settings: settings,
		registry: builtin.Register(slopplot.NewProviderRegistry(catalog)),
		catalog:  catalog,
		executor: executor,
		logger:   logger,
		stdout:   stdout,
	}, nil
}
