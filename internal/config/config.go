// Package config handles CLI settings loading.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	slopplot "github.com/haowjy/slopplot-go"
	"github.com/haowjy/slopplot-go/executor/python"
)

// ExecutorConfig defines the Python subprocess settings.
type ExecutorConfig struct {
	Command        string `yaml:"command" kong:"help='Python interpreter',default='python3'"`
	TimeoutSeconds int    `yaml:"timeout_seconds" kong:"help='Execution timeout in seconds',default='30'"`
	MaxOutputMB    int    `yaml:"max_output_mb" kong:"help='Cap on captured output in MiB',default='8'"`
	MemoryMB       int    `yaml:"memory_mb" kong:"help='Address space limit in MiB (-1 disables)',default='1024'"`
	DPI            int    `yaml:"dpi" kong:"help='PNG resolution for matplotlib renders',default='100'"`
	Isolated       bool   `yaml:"isolated" kong:"help='Run python with -I',default='true',negatable"`
}

// Settings represents the CLI configuration.
type Settings struct {
	Model                 string         `yaml:"model" kong:"help='Default model identifier',default='lorem/lorem-fast'"`
	Flavor                string         `yaml:"flavor" kong:"help='Default plotting library (matplotlib/plotly)',default='matplotlib'"`
	RequestTimeoutSeconds int            `yaml:"request_timeout_seconds" kong:"help='Model request timeout in seconds',default='120'"`
	MaxTokens             int            `yaml:"max_tokens" kong:"help='Max tokens to generate (0 uses the provider default)',default='0'"`
	System                string         `yaml:"system" kong:"help='System prompt sent ahead of the instruction'"`
	CatalogFile           string         `yaml:"catalog_file" kong:"help='Provider catalog override (YAML)'"`
	Executor              ExecutorConfig `yaml:"executor" kong:"embed,prefix='executor.'"`

	// Params holds request parameters (temperature, top_p, stop, ...) as written in the file.
	// max_tokens and system above take precedence when set.
	Params map[string]any `yaml:"params" kong:"-"`
}

// DefaultPath returns ~/.config/slopplot/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "slopplot", "config.yaml"), nil
}

// Load reads settings from path, or from DefaultPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Settings{}

	var options []kong.Option

	// Only add configuration loader if file exists
	if _, err := os.Stat(path); err == nil {
		options = append(options, kong.Configuration(yamlKongLoader, path))
		params, err := loadParams(path)
		if err != nil {
			return nil, err
		}
		cfg.Params = params
	}

	parser, err := kong.New(&cfg, options...)
	if err != nil {
		return nil, err
	}

	if _, err := parser.Parse([]string{}); err != nil {
		return nil, err
	}

	cfg.Model = strings.TrimSpace(cfg.Model)

	if _, err := cfg.RequestParams(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// loadParams reads the free-form params section of the settings file.
func loadParams(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Params map[string]any `yaml:"params"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	return file.Params, nil
}

// RequestParams converts the settings into provider request parameters.
func (s Settings) RequestParams() (*slopplot.RequestParams, error) {
	params, err := slopplot.ParseRequestParams(s.Params)
	if err != nil {
		return nil, &slopplot.ConfigError{Field: "params", Value: s.Params, Reason: err.Error()}
	}
	if err := slopplot.ValidateRequestParams(params); err != nil {
		return nil, err
	}
	if s.MaxTokens > 0 {
		maxTokens := s.MaxTokens
		params.MaxTokens = &maxTokens
	}
	if strings.TrimSpace(s.System) != "" {
		system := s.System
		params.System = &system
	}
	return params, nil
}

// RequestTimeout returns the model request timeout.
func (s Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// PythonConfig converts the executor settings.
func (s Settings) PythonConfig() python.Config {
	isolated := s.Executor.Isolated
	memory := int64(s.Executor.MemoryMB) << 20
	if s.Executor.MemoryMB < 0 {
		memory = -1
	}
	return python.Config{
		Command:        s.Executor.Command,
		Timeout:        time.Duration(s.Executor.TimeoutSeconds) * time.Second,
		MaxOutputBytes: s.Executor.MaxOutputMB << 20,
		MemoryBytes:    memory,
		DPI:            s.Executor.DPI,
		Isolated:       &isolated,
	}
}

func yamlKongLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		if err == io.EOF {
			return nil, nil // Return nil resolver (no op)
		}
		return nil, err
	}

	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		// Try various naming conventions
		names := []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")}
		for _, name := range names {
			if v, ok := values[name]; ok {
				return v, nil
			}

			// Check nested dot-notation
			parts := strings.Split(name, ".")
			if len(parts) > 1 {
				curr := values
				for i, part := range parts {
					if i == len(parts)-1 {
						if v, ok := curr[part]; ok {
							return v, nil
						}
					} else {
						nextMap, ok := curr[part].(map[string]any)
						if !ok {
							break
						}
						curr = nextMap
					}
				}
			}
		}
		return nil, nil
	}
	return f, nil
}
