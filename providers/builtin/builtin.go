// Package builtin links every provider client shipped with slopplot into one registry.
package builtin

import (
	slopplot "github.com/haowjy/slopplot-go"
	"github.com/haowjy/slopplot-go/providers/anthropic"
	"github.com/haowjy/slopplot-go/providers/lorem"
	"github.com/haowjy/slopplot-go/providers/openai"
	"github.com/haowjy/slopplot-go/providers/openrouter"
)

// Register links the built-in clients into r. Google stays unlinked and resolves to a DependencyError.
func Register(r *slopplot.ProviderRegistry) *slopplot.ProviderRegistry {
	r.Register(slopplot.ProviderOpenAI, openai.Factory)
	r.Register(slopplot.ProviderOpenRouter, openrouter.Factory)
	r.Register(slopplot.ProviderAnthropic, anthropic.Factory)
	r.Register(slopplot.ProviderLorem, lorem.Factory)
	return r
}

// NewRegistry returns a registry over the global catalog with every built-in client linked.
func NewRegistry() *slopplot.ProviderRegistry {
	return Register(slopplot.NewProviderRegistry(nil))
}
