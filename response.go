package slopplot

// Completion contains the provider's reply.
type Completion struct {
	// Text is the full text of the first response choice.
	Text string

	// Model is the model that was used (may differ from request if aliased)
	Model string

	// InputTokens is the number of tokens in the input
	InputTokens int

	// OutputTokens is the number of tokens in the output
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "stop", "end_turn", "max_tokens")
	StopReason string

	// Metadata contains provider-specific response data
	Metadata map[string]interface{}
}

// Result is what a generation returns, shaped by the ReturnCode/RunCode options.
type Result struct {
	// Code is the generated code; set only when ReturnCode is requested.
	Code string

	// Output is the executed figure; set only when RunCode is requested.
	Output *ExecutionResult

	// Warnings are informational lint findings about the generated code.
	Warnings []CodeWarning

	// Completion is the raw provider reply.
	Completion *Completion
}
