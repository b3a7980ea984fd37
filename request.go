package slopplot

// CompletionRequest contains the parameters for one model call.
type CompletionRequest struct {
	// Instruction is the single user message built by BuildInstruction.
	Instruction string

	// Model is the upstream model name (already stripped of the provider segment).
	Model string

	// Params contains optional request parameters (temperature, max_tokens, system prompt).
	// Provider adapters extract what they support from this unified struct.
	Params *RequestParams
}

// Request is the caller-facing input of a generation.
type Request struct {
	// Prompt describes the desired plot.
	Prompt string

	// Data is made available to the generated code as the `data` variable.
	// It is rendered into the instruction and must be JSON-serializable to be executed.
	Data any

	// Model is "provider/model" or "provider/organization/model" (e.g. "openai/gpt-4").
	Model string
}
