package slopplot

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConfigError_Is(t *testing.T) {
	err := &ConfigError{Field: "provider", Value: "mistral", Reason: "unknown provider", Err: ErrUnknownProvider}

	if !errors.Is(err, ErrUnknownProvider) {
		t.Error("expected errors.Is(err, ErrUnknownProvider)")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Error("ConfigError should always match ErrConfiguration")
	}
	if !IsConfigError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsConfigError should see through wrapping")
	}
}

func TestStageError(t *testing.T) {
	inner := &OutputMissingError{Variable: "fig"}
	err := &StageError{Stage: StageExtracted, Err: inner}

	if FailedStage(err) != StageExtracted {
		t.Errorf("FailedStage() = %s, want extracted", FailedStage(err))
	}
	if FailedStage(errors.New("plain")) != StageIdle {
		t.Error("errors without a stage report idle")
	}
	if !errors.Is(err, ErrOutputMissing) {
		t.Error("StageError should unwrap to the stage failure")
	}
	if err.Error() != "extracted: generated code did not assign the output variable 'fig'" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	err := &ExecutionError{Kind: "timeout", Message: "slow", Err: fmt.Errorf("%w: %w", ErrTimeout, context.DeadlineExceeded)}

	if !errors.Is(err, ErrExecution) {
		t.Error("expected ErrExecution")
	}
	if !errors.Is(err, ErrTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected the underlying cause to be reachable")
	}

	bare := &ExecutionError{Kind: "NameError", Message: "name 'pd' is not defined"}
	if !errors.Is(bare, ErrExecution) {
		t.Error("expected ErrExecution without a cause")
	}
	if bare.Error() != "generated code failed: NameError: name 'pd' is not defined" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", fmt.Errorf("%w: OPENAI_API_KEY not set", ErrAuthentication), true},
		{"401", &ProviderError{Provider: "openai", StatusCode: 401}, true},
		{"403", &ProviderError{Provider: "openai", StatusCode: 403}, true},
		{"500", &ProviderError{Provider: "openai", StatusCode: 500, Err: ErrProviderUnavailable}, false},
		{"staged", &StageError{Stage: StageBuilt, Err: ErrAuthentication}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable provider error", &ProviderError{StatusCode: 503, Retryable: true}, true},
		{"non-retryable provider error", &ProviderError{StatusCode: 400, Err: ErrConfiguration}, false},
		{"rate limit sentinel", fmt.Errorf("x: %w", ErrRateLimited), true},
		{"config error", &ConfigError{Field: "model"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDependencyError(t *testing.T) {
	err := &DependencyError{Dependency: "Google Gemini client", Hint: "not linked"}

	if !errors.Is(err, ErrDependencyMissing) {
		t.Error("expected ErrDependencyMissing")
	}
	if err.Error() != "Google Gemini client is required but not available: not linked" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestStage_String(t *testing.T) {
	if StageRequested.String() != "requested" {
		t.Errorf("String() = %q", StageRequested.String())
	}
	if Stage(42).String() != "unknown" {
		t.Errorf("String() = %q", Stage(42).String())
	}
}
