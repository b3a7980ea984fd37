// Package lorem is an offline mock provider. It wraps a canned, flavor-correct plotting script
// in lorem ipsum prose so the whole pipeline can run without API keys.
package lorem

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	slopplot "github.com/haowjy/slopplot-go"
)

var _ slopplot.Provider = (*Provider)(nil)

// Provider is a mock LLM provider that generates lorem ipsum text around plotting code.
// Used for testing and development without requiring real API keys.
//
// Model names select behavior:
//   - lorem-fast (no delay), lorem-medium (200ms), lorem-slow (2s)
//   - lorem-nofence: prose only, no code block
//   - lorem-nooutput: code that never assigns the output variable
//   - lorem-raise: code that raises at run time
type Provider struct {
	generator *loremgen.Lorem
	logger    *log.Logger
}

// NewProvider creates a new lorem ipsum provider. It logs nothing until SetLogger is called.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
		logger:    log.New(io.Discard, "", 0),
	}
}

// SetLogger routes [LOREM] logs to l; nil discards them.
func (p *Provider) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	p.logger = l
}

// Factory links the provider into a registry. Lorem needs no credential.
func Factory(_ slopplot.ProviderSpec, _ string) (slopplot.Provider, error) {
	return NewProvider(), nil
}

// Name returns the provider identifier.
func (p *Provider) Name() slopplot.ProviderID {
	return slopplot.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// Complete returns prose with one fenced python block after a model-dependent delay.
func (p *Provider) Complete(ctx context.Context, req *slopplot.CompletionRequest) (*slopplot.Completion, error) {
	if !p.SupportsModel(req.Model) {
		return nil, &slopplot.ConfigError{
			Field:  "model",
			Value:  req.Model,
			Reason: "model not supported by Lorem provider (must start with 'lorem-')",
		}
	}

	// Simulate processing delay
	select {
	case <-time.After(getDelay(req.Model)):
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: lorem: %w", slopplot.ErrTimeout, ctx.Err())
	}

	flavor := detectFlavor(req.Instruction)
	maxTokens := req.Params.GetMaxTokens(256)

	var text strings.Builder
	text.WriteString(p.generateTextWords(min(maxTokens/4, 40)))
	if !strings.Contains(req.Model, "nofence") {
		text.WriteString("\n\n```python\n")
		text.WriteString(cannedCode(flavor, req.Model, p.generator.Word(4, 9)))
		text.WriteString("\n```\n\n")
		text.WriteString(p.generator.Sentence(5, 12))
	}

	out := text.String()
	p.logger.Printf("[LOREM] Complete: model=%s flavor=%s chars=%d", req.Model, flavor, len(out))

	return &slopplot.Completion{
		Text:         out,
		Model:        req.Model,
		InputTokens:  len(strings.Fields(req.Instruction)),
		OutputTokens: len(strings.Fields(out)), // Word count as proxy
		StopReason:   "end_turn",
		Metadata: map[string]interface{}{
			"mock":     true,
			"provider": "lorem",
		},
	}, nil
}

// getDelay returns the simulated latency for a model name.
func getDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 2 * time.Second
	}
	if strings.Contains(model, "medium") {
		return 200 * time.Millisecond
	}
	return 0
}

// detectFlavor guesses the target library from the instruction text.
func detectFlavor(instruction string) slopplot.Flavor {
	if strings.Contains(instruction, "plotly") {
		return slopplot.FlavorPlotly
	}
	return slopplot.FlavorMatplotlib
}

// cannedCode returns a script that plots a mapping or a sequence held in `data`.
func cannedCode(flavor slopplot.Flavor, model, title string) string {
	out := flavor.OutputVariable()
	if strings.Contains(model, "nooutput") {
		out = "result"
	}

	lines := []string{
		"if isinstance(data, dict):",
		"    labels = [str(k) for k in data.keys()]",
		"    values = list(data.values())",
		"else:",
		"    values = list(data) if isinstance(data, (list, tuple)) else [data]",
		"    labels = [str(i) for i in range(len(values))]",
	}
	if strings.Contains(model, "raise") {
		lines = append(lines, "raise ValueError(\"lorem refuses to plot\")")
	}

	switch flavor {
	case slopplot.FlavorPlotly:
		lines = append(lines, fmt.Sprintf("%s = px.bar(x=labels, y=values, title=%q)", out, title))
	default:
		lines = append(lines,
			"_fig, ax = plt.subplots()",
			fmt.Sprintf("%s = ax.scatter(range(len(values)), values)", out),
			"ax.set_xticks(range(len(values)))",
			"ax.set_xticklabels(labels)",
			fmt.Sprintf("ax.set_title(%q)", title),
		)
	}
	return strings.Join(lines, "\n")
}

// generateTextWords builds prose of roughly targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	if targetWords < 5 {
		targetWords = 5
	}
	var sentences []string
	words := 0
	for words < targetWords {
		sentence := p.generator.Sentence(5, 15)
		sentences = append(sentences, sentence)
		words += len(strings.Fields(sentence))
	}
	return strings.Join(sentences, " ")
}
