// Package openrouter is the OpenRouter provider. OpenRouter proxies many upstream vendors behind
// an OpenAI-compatible API and addresses models as "org/model", so this variant forwards the
// organization segment of the identifier (openrouter/google/gemini-2.5-flash → google/gemini-2.5-flash).
package openrouter

import (
	"context"
	"fmt"
	"net/http"

	slopplot "github.com/haowjy/slopplot-go"
	"github.com/haowjy/slopplot-go/providers/internal/chatcompletion"
)

// DefaultBaseURL is the public OpenRouter API.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const (
	defaultReferer  = "https://github.com/haowjy/slopplot-go"
	defaultAppTitle = "slopplot"
)

var _ slopplot.Provider = (*Provider)(nil)

// Provider implements slopplot.Provider for OpenRouter's unified API.
//
// Common Issues:
// - 404 errors: Verify model name at https://openrouter.ai/models
// - 402 errors: the account is out of credits
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewProvider creates a new OpenRouter provider with the given API key.
func NewProvider(apiKey, baseURL string, httpClient *http.Client) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenRouter API key is empty", slopplot.ErrAuthentication)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{apiKey: apiKey, baseURL: baseURL, httpClient: httpClient}, nil
}

// Factory links the provider into a registry.
func Factory(spec slopplot.ProviderSpec, apiKey string) (slopplot.Provider, error) {
	return NewProvider(apiKey, spec.BaseURL, nil)
}

// Name returns the provider identifier.
func (p *Provider) Name() slopplot.ProviderID {
	return slopplot.ProviderOpenRouter
}

// Complete issues one chat completion request with OpenRouter attribution headers.
func (p *Provider) Complete(ctx context.Context, req *slopplot.CompletionRequest) (*slopplot.Completion, error) {
	referer, title := defaultReferer, defaultAppTitle
	if req.Params != nil {
		if req.Params.Referer != nil {
			referer = *req.Params.Referer
		}
		if req.Params.AppTitle != nil {
			title = *req.Params.AppTitle
		}
	}

	client, err := chatcompletion.New(slopplot.ProviderOpenRouter, p.apiKey, p.baseURL,
		chatcompletion.WithHTTPClient(p.httpClient),
		chatcompletion.WithHeader("HTTP-Referer", referer),
		chatcompletion.WithHeader("X-Title", title),
	)
	if err != nil {
		return nil, err
	}
	return client.Complete(ctx, req)
}
