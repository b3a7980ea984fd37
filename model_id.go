package slopplot

import (
	"strings"
)

// ModelID is a parsed "provider/model" or "provider/org/model" identifier.
type ModelID struct {
	Provider     ProviderID
	Organization string // Middle segment; accepted but not part of Name
	Name         string
}

// String reassembles the identifier.
func (m ModelID) String() string {
	if m.Organization != "" {
		return m.Provider.String() + "/" + m.Organization + "/" + m.Name
	}
	return m.Provider.String() + "/" + m.Name
}

// ParseModelID splits a model identifier into provider and model name.
// Exactly two or three non-empty segments are accepted; the provider is matched case-insensitively.
// Provider membership is not checked here; the registry rejects unknown providers.
func ParseModelID(s string) (ModelID, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 && len(parts) != 3 {
		return ModelID{}, &ConfigError{
			Field:  "model",
			Value:  s,
			Reason: "must be in the format 'provider/model_name' or 'provider/organization/model_name'",
		}
	}

	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
		if parts[i] == "" {
			return ModelID{}, &ConfigError{
				Field:  "model",
				Value:  s,
				Reason: "model identifier segments must not be empty",
			}
		}
	}

	id := ModelID{Provider: ProviderID(parts[0]), Name: parts[len(parts)-1]}
	if len(parts) == 3 {
		id.Organization = parts[1]
	}
	id.Provider = ProviderID(strings.ToLower(string(id.Provider)))
	return id, nil
}
