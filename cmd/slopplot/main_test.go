package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slopplot "github.com/haowjy/slopplot-go"
	"github.com/haowjy/slopplot-go/internal/config"
	"github.com/haowjy/slopplot-go/providers/builtin"
)

type fakeExecutor struct {
	calls  int
	code   string
	ns     slopplot.Namespace
	result *slopplot.ExecutionResult
}

func (f *fakeExecutor) Execute(_ context.Context, code string, ns slopplot.Namespace) (*slopplot.ExecutionResult, error) {
	f.calls++
	f.code = code
	f.ns = ns
	return f.result, nil
}

func newTestApp(t *testing.T, exec slopplot.Executor) (*app, *bytes.Buffer) {
	t.Helper()

	settings, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	catalog, err := slopplot.ParseCatalog([]byte(`
providers:
  openai:
    display_name: OpenAI
    api_key_env: OPENAI_API_KEY
    base_url: https://api.openai.com/v1
  google:
    display_name: Google Gemini
    api_key_env: GEMINI_API_KEY
  lorem:
    display_name: Lorem
`))
	require.NoError(t, err)

	registry := builtin.Register(slopplot.NewProviderRegistry(catalog))
	registry.SetLookupEnv(func(string) (string, bool) { return "", false })

	var out bytes.Buffer
	return &app{
		settings: settings,
		registry: registry,
		catalog:  catalog,
		executor: exec,
		logger:   log.New(io.Discard, "", 0),
		stdout:   &out,
	}, &out
}

func TestCLI_ParseGenerate(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{
		"generate", "bar chart of sales",
		"--data", `{"a":1,"b":2}`,
		"-m", "openai/gpt-4",
		"--flavor", "plotly",
		"--return-code",
	})
	require.NoError(t, err)

	assert.Equal(t, "generate <prompt>", kctx.Command())
	assert.Equal(t, "bar chart of sales", cli.Generate.Prompt)
	assert.Equal(t, "openai/gpt-4", cli.Generate.Model)
	assert.True(t, cli.Generate.ReturnCode)
	assert.False(t, cli.Generate.RunCode)
}

func TestCLI_DataFlagsAreExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1,2]`), 0o600))

	var cli CLI
	parser, err := kong.New(&cli)
	require.NoError(t, err)

	_, err = parser.Parse([]string{"generate", "p", "--data", "[1]", "--data-file", path})
	assert.Error(t, err)
}

func TestGenerateCmd_ReturnCodeOnly(t *testing.T) {
	exec := &fakeExecutor{}
	a, out := newTestApp(t, exec)

	cmd := &GenerateCmd{
		Prompt:     "bar chart of sales",
		Data:       `{"a":1,"b":2}`,
		Model:      "lorem/lorem-fast",
		Flavor:     "plotly",
		ReturnCode: true,
	}
	require.NoError(t, cmd.Run(a))

	assert.Contains(t, out.String(), "fig = px.bar(")
	assert.Equal(t, 0, exec.calls, "executor must not run when only code is requested")
}

func TestGenerateCmd_RunCode(t *testing.T) {
	exec := &fakeExecutor{result: &slopplot.ExecutionResult{
		Variable: "plot",
		Type:     "matplotlib.collections.PathCollection",
		Value:    json.RawMessage(`{"repr":"<PathCollection>"}`),
		Image:    []byte("\x89PNG"),
	}}
	a, out := newTestApp(t, exec)

	pngPath := filepath.Join(t.TempDir(), "plot.png")
	cmd := &GenerateCmd{
		Prompt: "scatter",
		Data:   `[3, 1, 2]`,
		Model:  "lorem/lorem-fast",
		Out:    pngPath,
	}
	require.NoError(t, cmd.Run(a))

	require.Equal(t, 1, exec.calls)
	assert.Equal(t, "plot", exec.ns.OutputVar)
	assert.Equal(t, json.RawMessage(`[3, 1, 2]`), exec.ns.Data)
	assert.Empty(t, out.String())

	written, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), written)
}

func TestGenerateCmd_PrintsOutput(t *testing.T) {
	exec := &fakeExecutor{result: &slopplot.ExecutionResult{
		Variable: "fig",
		Type:     "plotly.graph_objs._figure.Figure",
		Value:    json.RawMessage(`{"data":[]}`),
	}}
	a, out := newTestApp(t, exec)

	cmd := &GenerateCmd{Prompt: "p", Model: "lorem/lorem-fast", Flavor: "plotly", RunCode: true}
	require.NoError(t, cmd.Run(a))

	assert.Equal(t, "fig = plotly.graph_objs._figure.Figure\n{\"data\":[]}\n", out.String())
}

func TestGenerateCmd_Failures(t *testing.T) {
	a, _ := newTestApp(t, &fakeExecutor{})

	tests := []struct {
		name string
		cmd  GenerateCmd
		want string
	}{
		{"invalid json", GenerateCmd{Prompt: "p", Data: "{a:1}", Model: "lorem/lorem-fast", ReturnCode: true}, "must be valid JSON"},
		{"unknown flavor", GenerateCmd{Prompt: "p", Flavor: "bokeh", ReturnCode: true}, "flavor"},
		{"unknown provider", GenerateCmd{Prompt: "p", Model: "mistral/large", ReturnCode: true}, "built stage failed"},
		{"missing credential", GenerateCmd{Prompt: "p", Model: "openai/gpt-4", ReturnCode: true}, "OPENAI_API_KEY"},
		{"no fence", GenerateCmd{Prompt: "p", Model: "lorem/lorem-nofence", ReturnCode: true}, "requested stage failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteOutput_PNGWithoutImage(t *testing.T) {
	err := writeOutput(filepath.Join(t.TempDir(), "fig.png"), &slopplot.ExecutionResult{Type: "plotly.graph_objs._figure.Figure"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".json")
}

func TestProvidersCmd(t *testing.T) {
	a, out := newTestApp(t, nil)

	require.NoError(t, (&ProvidersCmd{}).Run(a))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "PROVIDER"))
	assert.Contains(t, lines[1], "google")
	assert.Contains(t, lines[1], "not linked")
	assert.Contains(t, lines[2], "lorem")
	assert.Contains(t, lines[2], "ready")
	assert.Contains(t, lines[3], "openai")
	assert.Contains(t, lines[3], "missing credential")
}
