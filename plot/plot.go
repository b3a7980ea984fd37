// Package plot exposes the two ready-wired entry points: Matplotlib and Plotly.
// Both link every built-in provider and run code in a local Python subprocess.
package plot

import (
	"context"
	"sync"

	slopplot "github.com/haowjy/slopplot-go"
	"github.com/haowjy/slopplot-go/executor/python"
	"github.com/haowjy/slopplot-go/providers/builtin"
)

var (
	defaultProviders     *slopplot.ProviderRegistry
	defaultProvidersOnce sync.Once
)

func providers() *slopplot.ProviderRegistry {
	defaultProvidersOnce.Do(func() {
		defaultProviders = builtin.NewRegistry()
	})
	return defaultProviders
}

// New returns a generator for flavor with the default providers and a python3 executor.
func New(flavor slopplot.Flavor) *slopplot.Generator {
	executor := python.NewExecutor(python.Config{})
	executor.SetLogger(nil)
	return slopplot.NewGenerator(flavor, providers(), executor)
}

// Matplotlib asks model for matplotlib code that plots data as described by prompt.
// The generated code binds its result to `plot`.
func Matplotlib(ctx context.Context, prompt string, data any, model string, opts slopplot.Options) (*slopplot.Result, error) {
	return New(slopplot.FlavorMatplotlib).Generate(ctx, slopplot.Request{Prompt: prompt, Data: data, Model: model}, opts)
}

// Plotly asks model for plotly code that plots data as described by prompt.
// The generated code binds its result to `fig`.
func Plotly(ctx context.Context, prompt string, data any, model string, opts slopplot.Options) (*slopplot.Result, error) {
	return New(slopplot.FlavorPlotly).Generate(ctx, slopplot.Request{Prompt: prompt, Data: data, Model: model}, opts)
}
