package slopplot

import (
	"context"
)

// Provider defines the interface every model client variant implements.
// The set of variants is closed: each one has a ProviderID constant and a catalog entry.
//
// Types used by this interface:
//   - CompletionRequest: defined in request.go
//   - Completion: defined in response.go
type Provider interface {
	// Complete issues one synchronous request and returns the text of the first choice.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// Name returns the provider identifier (e.g., "openai", "anthropic", "lorem")
	Name() ProviderID
}
