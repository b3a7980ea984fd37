package anthropic

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	slopplot "github.com/haowjy/slopplot-go"
)

// convertFromAnthropicResponse flattens the text blocks of a message into one completion.
// Claude can split an answer over several text blocks; thinking and tool blocks are skipped.
func convertFromAnthropicResponse(msg *anthropic.Message) *slopplot.Completion {
	var text strings.Builder
	textBlocks := 0
	for _, content := range msg.Content {
		if content.Type != "text" {
			continue
		}
		text.WriteString(content.Text)
		textBlocks++
	}

	responseMetadata := map[string]interface{}{
		"text_blocks": textBlocks,
	}
	if msg.StopSequence != "" {
		responseMetadata["stop_sequence"] = msg.StopSequence
	}
	if msg.Usage.CacheReadInputTokens > 0 {
		responseMetadata["cache_read_input_tokens"] = int(msg.Usage.CacheReadInputTokens)
	}

	return &slopplot.Completion{
		Text:         text.String(),
		Model:        string(msg.Model),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
		StopReason:   string(msg.StopReason),
		Metadata:     responseMetadata,
	}
}
