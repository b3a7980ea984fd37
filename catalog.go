package slopplot

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/providers.yaml
var providersYAML []byte

var defaultLookupEnv = os.LookupEnv

// Catalog Philosophy:
//
// The catalog is PROVIDER METADATA: where a provider lives and which environment variable holds
// its credential. It does not decide whether a provider is linked; the ProviderRegistry does.
//
// Library users can override the embedded catalog by:
//  1. Calling LoadCatalogFromFile() with custom YAML
//  2. Calling RegisterProviderSpec() programmatically

// CatalogFile is the on-disk/embedded catalog layout.
type CatalogFile struct {
	Version     string                  `yaml:"version"`      // Semantic version (e.g., "1.0.0")
	LastUpdated string                  `yaml:"last_updated"` // ISO 8601 date (e.g., "2026-10-01")
	Providers   map[string]ProviderSpec `yaml:"providers"`
}

// ProviderSpec describes one provider variant.
type ProviderSpec struct {
	ID                  ProviderID `yaml:"-"`
	DisplayName         string     `yaml:"display_name"`
	APIKeyEnv           string     `yaml:"api_key_env"`
	BaseURL             string     `yaml:"base_url"`
	BaseURLEnv          string     `yaml:"base_url_env"`
	ForwardOrganization bool       `yaml:"forward_organization"` // send "org/model" upstream
	DefaultMaxTokens    int        `yaml:"default_max_tokens"`
}

// UpstreamModel returns the model name this provider expects for the given identifier.
func (s ProviderSpec) UpstreamModel(id ModelID) string {
	if s.ForwardOrganization && id.Organization != "" {
		return id.Organization + "/" + id.Name
	}
	return id.Name
}

// Catalog holds provider specs keyed by ID.
type Catalog struct {
	specs map[ProviderID]ProviderSpec
	mu    sync.RWMutex
}

var (
	globalCatalog     *Catalog
	globalCatalogOnce sync.Once
)

// GetCatalog returns the global catalog (singleton), seeded from the embedded YAML.
func GetCatalog() *Catalog {
	globalCatalogOnce.Do(func() {
		globalCatalog = NewCatalog()
		if err := globalCatalog.load(providersYAML); err != nil {
			// Don't panic - Resolve reports the missing entry as a configuration error
			log.Printf("[SLOPPLOT] failed to load embedded provider catalog: %v", err)
		}
	})
	return globalCatalog
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{specs: make(map[ProviderID]ProviderSpec)}
}

func (c *Catalog) load(data []byte) error {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal provider catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, spec := range file.Providers {
		id := ProviderID(name)
		if !id.IsValid() {
			return fmt.Errorf("provider catalog lists unknown provider %q", name)
		}
		spec.ID = id
		c.specs[id] = spec
	}
	return nil
}

// Provider returns the spec for a provider.
func (c *Catalog) Provider(id ProviderID) (ProviderSpec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	spec, ok := c.specs[id]
	if !ok {
		return ProviderSpec{}, fmt.Errorf("no catalog entry for provider: %s", id)
	}
	return spec, nil
}

// Providers returns every spec sorted by ID.
func (c *Catalog) Providers() []ProviderSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	specs := make([]ProviderSpec, 0, len(c.specs))
	for _, spec := range c.specs {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}

// LoadCatalogFromFile merges provider specs from a YAML file over the current entries.
func (c *Catalog) LoadCatalogFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read provider catalog: %w", err)
	}
	return c.load(data)
}

// RegisterProviderSpec programmatically registers or replaces a provider spec.
func (c *Catalog) RegisterProviderSpec(spec ProviderSpec) error {
	if !spec.ID.IsValid() {
		return fmt.Errorf("cannot register unknown provider %q", spec.ID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs[spec.ID] = spec
	return nil
}

// LoadCatalogFromFile is a convenience function that calls the global catalog's LoadCatalogFromFile.
func LoadCatalogFromFile(path string) error {
	return GetCatalog().LoadCatalogFromFile(path)
}

// RegisterProviderSpec is a convenience function that calls the global catalog's RegisterProviderSpec.
func RegisterProviderSpec(spec ProviderSpec) error {
	return GetCatalog().RegisterProviderSpec(spec)
}

// ParseCatalog builds a standalone catalog from YAML bytes.
func ParseCatalog(data []byte) (*Catalog, error) {
	c := NewCatalog()
	if err := c.load(data); err != nil {
		return nil, err
	}
	return c, nil
}
