package slopplot

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ x, y int }

func (p point) String() string { return "point(1, 2)" }

func TestBuildInstruction_Matplotlib(t *testing.T) {
	got, err := BuildInstruction(FlavorMatplotlib, "scatter of heights", []int{170, 182})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "The user will ask you to create a plot based on the following guidelines:\nscatter of heights\n"))
	assert.Contains(t, got, "[\n  170,\n  182\n]")
	assert.Contains(t, got, "You must generate matplotlib code")
	assert.Contains(t, got, "```python\n<your code here>\n```")
	assert.Contains(t, got, "variable named `plot`")
	assert.Contains(t, got, "`import matplotlib` and `import matplotlib.pyplot as plt`")
	assert.Contains(t, got, "variable `data`")
	assert.Contains(t, got, "do not call show(), savefig() or plot.show()")
}

func TestBuildInstruction_Plotly(t *testing.T) {
	got, err := BuildInstruction(FlavorPlotly, "bar chart of sales", map[string]int{"a": 1, "b": 2})
	require.NoError(t, err)

	assert.Contains(t, got, "You must generate plotly code")
	assert.Contains(t, got, "variable named `fig`")
	assert.Contains(t, got, "`import plotly.express as px` and `import plotly.graph_objects as go`")
	assert.Contains(t, got, "{\n  \"a\": 1,\n  \"b\": 2\n}")
}

func TestBuildInstruction_UnknownFlavor(t *testing.T) {
	_, err := BuildInstruction(Flavor("seaborn"), "x", nil)
	assert.True(t, IsConfigError(err))
}

func TestRenderData(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"nil", nil, "null"},
		{"string passes through", "a,b\n1,2", "a,b\n1,2"},
		{"bytes pass through", []byte("x y"), "x y"},
		{"raw json passes through", json.RawMessage(`{"a":1}`), `{"a":1}`},
		{"stringer", point{1, 2}, "point(1, 2)"},
		{"number", 3.5, "3.5"},
		{"map", map[string]int{"b": 2, "a": 1}, "{\n  \"a\": 1,\n  \"b\": 2\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderData(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderData_Unserializable(t *testing.T) {
	_, err := RenderData(map[string]any{"f": func() {}})
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "data", cfgErr.Field)
}

func TestFlavor(t *testing.T) {
	f, err := ParseFlavor(" Plotly ")
	require.NoError(t, err)
	assert.Equal(t, FlavorPlotly, f)

	_, err = ParseFlavor("bokeh")
	assert.True(t, IsConfigError(err))

	ns := FlavorMatplotlib.Namespace(map[string]int{"a": 1})
	assert.Equal(t, "plot", ns.OutputVar)
	assert.Equal(t, DataVariable, ns.DataVar)
	assert.Equal(t, []Handle{{Name: "matplotlib", Module: "matplotlib"}, {Name: "plt", Module: "matplotlib.pyplot"}}, ns.Handles)
}
