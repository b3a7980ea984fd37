// Package anthropic is the Claude provider, built on the official Anthropic Go SDK.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	slopplot "github.com/haowjy/slopplot-go"
)

var _ slopplot.Provider = (*Provider)(nil)

// Provider implements the slopplot.Provider interface for Anthropic (Claude) models.
type Provider struct {
	client *anthropic.Client
}

// NewProvider creates a new Anthropic provider with the given API key.
// An empty baseURL keeps the SDK default.
func NewProvider(apiKey, baseURL string, httpClient *http.Client) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Anthropic API key is empty", slopplot.ErrAuthentication)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// The generator never retries; a failure is terminal for the call.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	client := anthropic.NewClient(opts...)

	return &Provider{
		client: &client,
	}, nil
}

// Factory links the provider into a registry.
func Factory(spec slopplot.ProviderSpec, apiKey string) (slopplot.Provider, error) {
	return NewProvider(apiKey, spec.BaseURL, nil)
}

// Name returns the provider identifier.
func (p *Provider) Name() slopplot.ProviderID {
	return slopplot.ProviderAnthropic
}

// Complete sends the instruction as a single user message.
func (p *Provider) Complete(ctx context.Context, req *slopplot.CompletionRequest) (*slopplot.Completion, error) {
	if err := validateParams(req.Params); err != nil {
		return nil, err
	}
	apiParams := buildMessageParams(req)

	message, err := p.client.Messages.New(ctx, apiParams)
	if err != nil {
		return nil, p.convertError(err)
	}

	return convertFromAnthropicResponse(message), nil
}

// convertError maps SDK errors onto library errors.
func (p *Provider) convertError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: anthropic request: %w", slopplot.ErrTimeout, err)
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return &slopplot.ProviderError{
			Provider:  p.Name().String(),
			Message:   fmt.Sprintf("API call failed: %v", err),
			Retryable: true,
			Err:       slopplot.ErrProviderUnavailable,
		}
	}

	providerErr := &slopplot.ProviderError{
		Provider:   p.Name().String(),
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Error(),
	}
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		providerErr.Err = slopplot.ErrAuthentication
	case apiErr.StatusCode == http.StatusTooManyRequests:
		providerErr.Retryable = true
		providerErr.Err = slopplot.ErrRateLimited
	case apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusNotFound:
		providerErr.Err = slopplot.ErrConfiguration
	default:
		// 529 overloaded and 5xx
		providerErr.Retryable = apiErr.StatusCode >= 500
		providerErr.Err = slopplot.ErrProviderUnavailable
	}
	return providerErr
}
