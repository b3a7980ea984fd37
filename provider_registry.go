package slopplot

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderID represents a unique provider identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ProviderID string

// Known provider identifiers
const (
	// ProviderOpenAI is OpenAI's chat completions API
	ProviderOpenAI ProviderID = "openai"

	// ProviderOpenRouter is OpenRouter's OpenAI-compatible API
	ProviderOpenRouter ProviderID = "openrouter"

	// ProviderAnthropic is Anthropic's Claude API
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderGoogle is Google's Gemini API (known, no client linked)
	ProviderGoogle ProviderID = "google"

	// ProviderLorem is the offline mock provider
	ProviderLorem ProviderID = "lorem"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderOpenRouter, ProviderAnthropic, ProviderGoogle, ProviderLorem:
		return true
	default:
		return false
	}
}

// ProviderFactory builds a provider handle for one call.
// It receives the catalog entry and the credential resolved from the environment.
type ProviderFactory func(spec ProviderSpec, apiKey string) (Provider, error)

// ProviderRegistry maps each known provider to the factory that links its client.
// Lookups resolve credentials per call; nothing is cached between calls.
type ProviderRegistry struct {
	factories map[ProviderID]ProviderFactory
	catalog   *Catalog
	lookupEnv func(string) (string, bool)
	mu        sync.RWMutex
}

// NewProviderRegistry creates an empty registry backed by the given catalog.
// A nil catalog uses the global catalog.
func NewProviderRegistry(catalog *Catalog) *ProviderRegistry {
	if catalog == nil {
		catalog = GetCatalog()
	}
	return &ProviderRegistry{
		factories: make(map[ProviderID]ProviderFactory),
		catalog:   catalog,
		lookupEnv: defaultLookupEnv,
	}
}

// Register links a provider client. Registering an unknown ID panics: the set is closed.
func (r *ProviderRegistry) Register(id ProviderID, factory ProviderFactory) {
	if !id.IsValid() {
		panic(fmt.Sprintf("slopplot: cannot register unknown provider %q", id))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = factory
}

// SetLookupEnv replaces the environment lookup used for credentials (tests, embedding).
func (r *ProviderRegistry) SetLookupEnv(lookup func(string) (string, bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lookup == nil {
		lookup = defaultLookupEnv
	}
	r.lookupEnv = lookup
}

// Registered returns the linked provider IDs in sorted order.
func (r *ProviderRegistry) Registered() []ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ProviderID, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Resolve returns a fresh provider handle for the given ID.
//
// Failure order: unknown provider (ConfigError/ErrUnknownProvider), provider not linked
// (DependencyError), credential missing (ErrAuthentication).
func (r *ProviderRegistry) Resolve(id ProviderID) (Provider, error) {
	if !id.IsValid() {
		return nil, &ConfigError{
			Field:  "provider",
			Value:  string(id),
			Reason: fmt.Sprintf("unknown provider (known: %s)", strings.Join(knownProviderNames(), ", ")),
			Err:    ErrUnknownProvider,
		}
	}

	spec, err := r.catalog.Provider(id)
	if err != nil {
		return nil, &ConfigError{Field: "provider", Value: string(id), Reason: err.Error()}
	}

	r.mu.RLock()
	factory, ok := r.factories[id]
	lookup := r.lookupEnv
	r.mu.RUnlock()

	if !ok {
		return nil, &DependencyError{
			Dependency: spec.DisplayName + " client",
			Hint:       fmt.Sprintf("provider '%s' is known but no client is linked into this build", id),
		}
	}

	var apiKey string
	if spec.APIKeyEnv != "" {
		value, found := lookup(spec.APIKeyEnv)
		if !found || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w: %s API key not found, set the %s environment variable",
				ErrAuthentication, spec.DisplayName, spec.APIKeyEnv)
		}
		apiKey = strings.TrimSpace(value)
	}

	if spec.BaseURLEnv != "" {
		if value, found := lookup(spec.BaseURLEnv); found && strings.TrimSpace(value) != "" {
			spec.BaseURL = strings.TrimSpace(value)
		}
	}

	return factory(spec, apiKey)
}

func knownProviderNames() []string {
	return []string{
		ProviderOpenAI.String(),
		ProviderOpenRouter.String(),
		ProviderAnthropic.String(),
		ProviderGoogle.String(),
		ProviderLorem.String(),
	}
}
