package slopplot

import (
	"fmt"
	"strings"
)

// Handle is a plotting library binding placed in the execution namespace before the code runs.
type Handle struct {
	Name   string `json:"name"`   // Variable name in the namespace (e.g. "plt")
	Module string `json:"module"` // Python module bound to it (e.g. "matplotlib.pyplot")
}

// Flavor selects the target plotting library.
type Flavor string

const (
	FlavorMatplotlib Flavor = "matplotlib"
	FlavorPlotly     Flavor = "plotly"
)

// DataVariable is the namespace name the input data is bound to, for every flavor.
const DataVariable = "data"

// ParseFlavor accepts a flavor name, case-insensitively.
func ParseFlavor(s string) (Flavor, error) {
	f := Flavor(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", &ConfigError{
			Field:  "flavor",
			Value:  s,
			Reason: "must be 'matplotlib' or 'plotly'",
		}
	}
	return f, nil
}

// IsValid reports whether f is a known flavor.
func (f Flavor) IsValid() bool {
	return f == FlavorMatplotlib || f == FlavorPlotly
}

// OutputVariable is the name the generated code must bind its result to.
func (f Flavor) OutputVariable() string {
	if f == FlavorPlotly {
		return "fig"
	}
	return "plot"
}

// Handles returns the library bindings pre-populated in the namespace.
func (f Flavor) Handles() []Handle {
	switch f {
	case FlavorPlotly:
		return []Handle{
			{Name: "px", Module: "plotly.express"},
			{Name: "go", Module: "plotly.graph_objects"},
		}
	default:
		return []Handle{
			{Name: "matplotlib", Module: "matplotlib"},
			{Name: "plt", Module: "matplotlib.pyplot"},
		}
	}
}

// Namespace returns the execution namespace for the given data.
func (f Flavor) Namespace(data any) Namespace {
	return Namespace{
		Handles:   f.Handles(),
		DataVar:   DataVariable,
		Data:      data,
		OutputVar: f.OutputVariable(),
	}
}

// libraryName is how the instruction refers to the target library.
func (f Flavor) libraryName() string {
	if f == FlavorPlotly {
		return "plotly"
	}
	return "matplotlib"
}

// objectDescription is what the instruction asks the output variable to hold.
func (f Flavor) objectDescription() string {
	if f == FlavorPlotly {
		return "a plotly figure object"
	}
	return "the matplotlib plot object (e.g. the PathCollection, Axes or Figure you created)"
}

func (f Flavor) importDescription() string {
	handles := f.Handles()
	parts := make([]string, 0, len(handles))
	for _, h := range handles {
		if h.Name == h.Module {
			parts = append(parts, fmt.Sprintf("`import %s`", h.Module))
		} else {
			parts = append(parts, fmt.Sprintf("`import %s as %s`", h.Module, h.Name))
		}
	}
	return strings.Join(parts, " and ")
}
