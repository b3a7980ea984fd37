package slopplot

import (
	"context"
	"encoding/json"
	"time"
)

// Namespace is the binding environment generated code runs in.
type Namespace struct {
	Handles   []Handle // Plotting library bindings imported before the code runs
	DataVar   string   // Name the input data is bound to
	Data      any      // Input data; must be JSON-serializable
	OutputVar string   // Name read back after the code runs
}

// ExecutionResult is the object the generated code bound to the output variable.
// Value and Image are the harness serialization of that object and are passed through unchanged.
type ExecutionResult struct {
	Variable string          // Output variable name ("plot" or "fig")
	Type     string          // Qualified type of the bound object (e.g. "plotly.graph_objs._figure.Figure")
	Value    json.RawMessage // JSON form of the object
	Image    []byte          // PNG render, when the object belongs to a matplotlib figure
	Stdout   string          // What the code printed
	Duration time.Duration
}

// Executor runs generated code against a namespace and returns the output variable.
//
// Implementations must isolate the code from the host process and bound its run time.
// Errors: *ExecutionError (code raised, timed out, interpreter failed), *OutputMissingError,
// *DependencyError (interpreter or plotting module missing).
type Executor interface {
	Execute(ctx context.Context, code string, ns Namespace) (*ExecutionResult, error)
}
