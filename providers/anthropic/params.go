package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"

	slopplot "github.com/haowjy/slopplot-go"
)

const (
	defaultMaxTokens = 4096
	// Messages API range; the shared validation allows up to 2.0 for OpenAI-compatible providers.
	maxTemperature = 1.0
)

// validateParams rejects values the Messages API would answer with a 400.
func validateParams(params *slopplot.RequestParams) error {
	if t := params.GetTemperature(0); t > maxTemperature {
		return &slopplot.ConfigError{
			Field:  "temperature",
			Value:  t,
			Reason: "anthropic accepts 0.0 to 1.0",
		}
	}
	return nil
}

// buildMessageParams constructs Anthropic API parameters from a CompletionRequest.
func buildMessageParams(req *slopplot.CompletionRequest) anthropic.MessageNewParams {
	// Extract params or use defaults
	params := req.Params
	if params == nil {
		params = &slopplot.RequestParams{}
	}

	apiParams := anthropic.MessageNewParams{
		Model: anthropic.Model(req.Model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Instruction)),
		},
		MaxTokens: int64(params.GetMaxTokens(defaultMaxTokens)),
	}

	// Temperature
	if params.Temperature != nil {
		apiParams.Temperature = anthropic.Float(*params.Temperature)
	}

	// Top-P
	if params.TopP != nil {
		apiParams.TopP = anthropic.Float(*params.TopP)
	}

	// Stop sequences
	if len(params.Stop) > 0 {
		apiParams.StopSequences = params.Stop
	}

	// System prompt
	if params.System != nil {
		apiParams.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: *params.System,
			},
		}
	}

	return apiParams
}
