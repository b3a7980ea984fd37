package slopplot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Options control what a generation returns and how long each step may take.
type Options struct {
	// ReturnCode includes the generated code in the result.
	ReturnCode bool

	// RunCode executes the code and includes the output object in the result.
	// When both ReturnCode and RunCode are false, RunCode is assumed.
	RunCode bool

	// Echo logs the generated code before it is executed.
	Echo bool

	// Params are passed to the provider unchanged.
	Params *RequestParams

	// RequestTimeout bounds the model call. Zero uses DefaultRequestTimeout.
	RequestTimeout time.Duration

	// ExecTimeout bounds the execution step. Zero uses DefaultExecTimeout.
	ExecTimeout time.Duration

	// Language is the fence tag to extract. Empty uses DefaultLanguage.
	Language string
}

const (
	DefaultRequestTimeout = 120 * time.Second
	DefaultExecTimeout    = 30 * time.Second
)

func (o Options) normalized() Options {
	if !o.ReturnCode && !o.RunCode {
		o.RunCode = true
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.ExecTimeout <= 0 {
		o.ExecTimeout = DefaultExecTimeout
	}
	if strings.TrimSpace(o.Language) == "" {
		o.Language = DefaultLanguage
	}
	return o
}

// Generator turns a prompt and data into plotting code for one flavor, and optionally runs it.
// It holds no per-call state and is safe for concurrent use.
type Generator struct {
	Flavor    Flavor
	Providers *ProviderRegistry
	Executor  Executor
	Lint      *LintEngine

	// Logger receives pipeline logs. When nil they are dropped and only
	// Echo output is written, to log.Default().
	Logger *log.Logger
}

// NewGenerator wires a generator. A nil executor is allowed when only code is requested.
func NewGenerator(flavor Flavor, providers *ProviderRegistry, executor Executor) *Generator {
	return &Generator{
		Flavor:    flavor,
		Providers: providers,
		Executor:  executor,
		Lint:      GetLintEngine(),
	}
}

// Generate runs Request Builder → Model Client → Code Extractor → (Executor).
// Every failure is returned wrapped in a *StageError naming the stage that failed.
// Nothing is retried and no partial result is returned on failure.
func (g *Generator) Generate(ctx context.Context, req Request, opts Options) (*Result, error) {
	opts = opts.normalized()
	logger := g.logger()
	runID := uuid.NewString()[:8]

	// Idle → Built
	modelID, err := ParseModelID(req.Model)
	if err != nil {
		return nil, &StageError{Stage: StageIdle, Err: err}
	}
	if err := ValidateRequestParams(opts.Params); err != nil {
		return nil, &StageError{Stage: StageIdle, Err: err}
	}
	instruction, err := BuildInstruction(g.Flavor, req.Prompt, req.Data)
	if err != nil {
		return nil, &StageError{Stage: StageIdle, Err: err}
	}
	if opts.RunCode && g.Executor == nil {
		return nil, &StageError{Stage: StageIdle, Err: &DependencyError{
			Dependency: "executor",
			Hint:       "RunCode was requested but the generator has no executor",
		}}
	}
	logger.Printf("[SLOPPLOT] run=%s flavor=%s model=%s instruction_chars=%d", runID, g.Flavor, modelID, len(instruction))

	// Built → Requested
	completion, err := g.complete(ctx, modelID, instruction, opts)
	if err != nil {
		return nil, &StageError{Stage: StageBuilt, Err: err}
	}
	logger.Printf("[SLOPPLOT] run=%s completion model=%s input_tokens=%d output_tokens=%d stop=%s",
		runID, completion.Model, completion.InputTokens, completion.OutputTokens, completion.StopReason)

	// Requested → Extracted
	block, err := ExtractCodeBlock(completion.Text, opts.Language)
	if err != nil {
		return nil, &StageError{Stage: StageRequested, Err: err}
	}
	code := block.Code

	result := &Result{Completion: completion}
	if g.Lint != nil {
		result.Warnings = g.Lint.Lint(g.Flavor, code)
		for _, w := range result.Warnings {
			logger.Printf("[SLOPPLOT] run=%s lint %s line=%d: %s", runID, w.Severity, w.Line, w.Message)
		}
	}
	if opts.ReturnCode {
		result.Code = code
	}
	if !opts.RunCode {
		return result, nil
	}

	// Extracted → Executed
	if opts.Echo {
		g.echoLogger().Printf("[SLOPPLOT] run=%s generated code:\n%s", runID, code)
	}
	execCtx, cancel := context.WithTimeout(ctx, opts.ExecTimeout)
	defer cancel()

	output, err := g.Executor.Execute(execCtx, code, g.Flavor.Namespace(req.Data))
	if err != nil {
		return nil, &StageError{Stage: StageExtracted, Err: err}
	}
	if output == nil {
		return nil, &StageError{Stage: StageExtracted, Err: &ExecutionError{Kind: "interpreter", Message: "executor returned no result"}}
	}
	logger.Printf("[SLOPPLOT] run=%s executed type=%s duration=%s", runID, output.Type, output.Duration)

	result.Output = output
	return result, nil
}

func (g *Generator) complete(ctx context.Context, modelID ModelID, instruction string, opts Options) (*Completion, error) {
	if g.Providers == nil {
		return nil, &DependencyError{Dependency: "provider registry", Hint: "generator has no provider registry"}
	}

	// Each call resolves a fresh client and reads credentials anew.
	provider, err := g.Providers.Resolve(modelID.Provider)
	if err != nil {
		return nil, err
	}
	spec, err := g.Providers.catalog.Provider(modelID.Provider)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, opts.RequestTimeout)
	defer cancel()

	completion, err := provider.Complete(reqCtx, &CompletionRequest{
		Instruction: instruction,
		Model:       spec.UpstreamModel(modelID),
		Params:      withDefaultMaxTokens(opts.Params, spec.DefaultMaxTokens),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			return nil, fmt.Errorf("%w: model request exceeded %s: %w", ErrTimeout, opts.RequestTimeout, err)
		}
		return nil, err
	}
	return completion, nil
}

// withDefaultMaxTokens fills in the catalog's token budget without mutating the caller's params.
func withDefaultMaxTokens(params *RequestParams, fallback int) *RequestParams {
	if fallback <= 0 || (params != nil && params.MaxTokens != nil) {
		return params
	}
	out := RequestParams{}
	if params != nil {
		out = *params
	}
	out.MaxTokens = &fallback
	return &out
}

func (g *Generator) echoLogger() *log.Logger {
	if g.Logger == nil {
		return log.Default()
	}
	return g.Logger
}

func (g *Generator) logger() *log.Logger {
	if g.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return g.Logger
}
