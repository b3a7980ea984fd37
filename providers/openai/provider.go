// Package openai is the OpenAI chat completions provider.
package openai

import (
	"context"
	"net/http"

	slopplot "github.com/haowjy/slopplot-go"
	"github.com/haowjy/slopplot-go/providers/internal/chatcompletion"
)

// DefaultBaseURL is the public OpenAI API.
const DefaultBaseURL = "https://api.openai.com/v1"

var _ slopplot.Provider = (*Provider)(nil)

// Provider implements slopplot.Provider for OpenAI's /chat/completions endpoint.
// Any OpenAI-compatible server works when the base URL is overridden (OPENAI_BASE_URL).
type Provider struct {
	client *chatcompletion.Client
}

// NewProvider creates a new OpenAI provider with the given API key.
// An empty baseURL uses DefaultBaseURL.
func NewProvider(apiKey, baseURL string, httpClient *http.Client) (*Provider, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client, err := chatcompletion.New(slopplot.ProviderOpenAI, apiKey, baseURL, chatcompletion.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
}

// Factory links the provider into a registry.
func Factory(spec slopplot.ProviderSpec, apiKey string) (slopplot.Provider, error) {
	return NewProvider(apiKey, spec.BaseURL, nil)
}

// Name returns the provider identifier.
func (p *Provider) Name() slopplot.ProviderID {
	return slopplot.ProviderOpenAI
}

// Complete issues one chat completion request.
func (p *Provider) Complete(ctx context.Context, req *slopplot.CompletionRequest) (*slopplot.Completion, error) {
	return p.client.Complete(ctx, req)
}
