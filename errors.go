package slopplot

import (
	"errors"
	"fmt"
)

// Sentinel errors for each failure class of the pipeline.
// These can be checked with errors.Is().
var (
	// ErrConfiguration indicates bad caller input (model identifier, data, options).
	ErrConfiguration = errors.New("slopplot: configuration error")

	// ErrUnknownProvider indicates the model identifier names a provider outside the known set.
	// Always wrapped together with ErrConfiguration.
	ErrUnknownProvider = errors.New("slopplot: unknown provider")

	// ErrDependencyMissing indicates a provider client or plotting library is not available.
	ErrDependencyMissing = errors.New("slopplot: dependency missing")

	// ErrAuthentication indicates the provider credential is missing or was rejected.
	ErrAuthentication = errors.New("slopplot: authentication failed")

	// ErrMalformedResponse indicates the completion did not contain a fenced code block.
	ErrMalformedResponse = errors.New("slopplot: malformed response")

	// ErrExecution indicates the generated code raised or the interpreter failed.
	ErrExecution = errors.New("slopplot: execution failed")

	// ErrOutputMissing indicates the generated code did not bind the output variable.
	ErrOutputMissing = errors.New("slopplot: output variable missing")

	// ErrRateLimited indicates the provider's rate limit has been exceeded.
	ErrRateLimited = errors.New("slopplot: rate limit exceeded")

	// ErrProviderUnavailable indicates the provider service is down or unreachable.
	ErrProviderUnavailable = errors.New("slopplot: provider unavailable")

	// ErrTimeout indicates a request or execution ran past its deadline.
	ErrTimeout = errors.New("slopplot: timeout")
)

// ConfigError represents invalid caller-supplied configuration.
type ConfigError struct {
	Field  string // The input that failed (e.g. "model")
	Value  any    // The offending value
	Reason string // Human-readable explanation
	Err    error  // Wrapped sentinel, ErrConfiguration unless something more specific applies
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (value: %v): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	if e.Err == nil {
		return ErrConfiguration
	}
	return e.Err
}

// Is makes every ConfigError match ErrConfiguration, even when Err is more specific.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// ProviderError represents an error from the underlying provider API.
type ProviderError struct {
	Provider   string // The provider name
	StatusCode int    // HTTP status code (if applicable)
	Message    string // Error message from provider
	Retryable  bool   // Whether this error is potentially retryable
	Err        error  // Wrapped sentinel error (ErrRateLimited, ErrProviderUnavailable, etc.)
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider '%s' error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider '%s' error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DependencyError reports a missing provider client, interpreter or plotting module.
type DependencyError struct {
	Dependency string // e.g. "google", "python3", "plotly.express"
	Hint       string // How to make it available
}

func (e *DependencyError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s is required but not available", e.Dependency)
	}
	return fmt.Sprintf("%s is required but not available: %s", e.Dependency, e.Hint)
}

func (e *DependencyError) Unwrap() error {
	return ErrDependencyMissing
}

// ExecutionError wraps whatever the generated code raised.
type ExecutionError struct {
	Kind      string // Python exception class, "timeout" or "interpreter"
	Message   string
	Traceback string
	Stderr    string
	Err       error // Underlying cause (exec error, ErrTimeout, ...)
}

func (e *ExecutionError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("generated code failed: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("generated code failed: %s", e.Message)
}

// Unwrap exposes both ErrExecution and the underlying cause.
func (e *ExecutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExecution}
	}
	return []error{ErrExecution, e.Err}
}

// OutputMissingError reports that the output variable was never bound.
type OutputMissingError struct {
	Variable string
}

func (e *OutputMissingError) Error() string {
	return fmt.Sprintf("generated code did not assign the output variable '%s'", e.Variable)
}

func (e *OutputMissingError) Unwrap() error {
	return ErrOutputMissing
}

// StageError records the last pipeline stage a call reached before it failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded on err, or StageIdle when err carries none.
func FailedStage(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return StageIdle
}

// IsRetryable checks if an error is potentially retryable.
// Returns true for rate limits and temporary provider unavailability.
// The generator itself never retries; this is for callers.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderUnavailable)
}

// IsConfigError checks if an error was caused by caller configuration.
func IsConfigError(err error) bool {
	return err != nil && errors.Is(err, ErrConfiguration)
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrAuthentication) {
		return true
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		// HTTP 401/403 indicate auth issues
		return providerErr.StatusCode == 401 || providerErr.StatusCode == 403
	}

	return false
}
