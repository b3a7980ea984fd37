package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	slopplot "github.com/haowjy/slopplot-go"
)

// GenerateCmd runs the pipeline once.
type GenerateCmd struct {
	Prompt     string `arg:"" help:"What to plot"`
	Data       string `help:"Inline JSON data" xor:"data"`
	DataFile   string `help:"JSON file holding the data" type:"existingfile" xor:"data"`
	Model      string `short:"m" help:"Model identifier (provider/model or provider/org/model)"`
	Flavor     string `short:"f" help:"Plotting library (matplotlib or plotly)"`
	ReturnCode bool   `help:"Print the generated code"`
	RunCode    bool   `help:"Run the generated code and report the output object"`
	Echo       bool   `help:"Log the generated code before running it"`
	Out        string `short:"o" help:"Write the output object to a file (PNG for matplotlib, JSON for plotly)" type:"path"`
}

// Run executes the command.
func (c *GenerateCmd) Run(a *app) error {
	flavorName := c.Flavor
	if flavorName == "" {
		flavorName = a.settings.Flavor
	}
	flavor, err := slopplot.ParseFlavor(flavorName)
	if err != nil {
		return err
	}

	model := c.Model
	if model == "" {
		model = a.settings.Model
	}

	data, err := c.loadData()
	if err != nil {
		return err
	}

	params, err := a.settings.RequestParams()
	if err != nil {
		return err
	}

	g := slopplot.NewGenerator(flavor, a.registry, a.executor)
	g.Logger = a.logger

	opts := slopplot.Options{
		ReturnCode:     c.ReturnCode,
		RunCode:        c.RunCode || c.Out != "",
		Echo:           c.Echo,
		Params:         params,
		RequestTimeout: a.settings.RequestTimeout(),
		ExecTimeout:    time.Duration(a.settings.Executor.TimeoutSeconds) * time.Second,
	}

	result, err := g.Generate(context.Background(), slopplot.Request{Prompt: c.Prompt, Data: data, Model: model}, opts)
	if err != nil {
		return fmt.Errorf("%s stage failed: %w", slopplot.FailedStage(err), err)
	}

	for _, w := range result.Warnings {
		a.logger.Printf("[SLOPPLOT] %s: %s", w.Severity, w.Message)
	}

	if result.Code != "" {
		fmt.Fprintln(a.stdout, result.Code)
	}
	if result.Output == nil {
		return nil
	}

	if c.Out != "" {
		return writeOutput(c.Out, result.Output)
	}
	fmt.Fprintf(a.stdout, "%s = %s\n", result.Output.Variable, result.Output.Type)
	if len(result.Output.Value) > 0 {
		fmt.Fprintln(a.stdout, string(result.Output.Value))
	}
	return nil
}

// loadData returns the JSON data verbatim so key order survives into the instruction.
func (c *GenerateCmd) loadData() (any, error) {
	raw := []byte(c.Data)
	if c.DataFile != "" {
		b, err := os.ReadFile(c.DataFile)
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		raw = b
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, &slopplot.ConfigError{Field: "data", Value: abbreviate(trimmed), Reason: "must be valid JSON"}
	}
	return json.RawMessage(trimmed), nil
}

// writeOutput writes the PNG render when the path ends in .png and one exists, otherwise the JSON value.
func writeOutput(path string, out *slopplot.ExecutionResult) error {
	payload := []byte(out.Value)
	if strings.EqualFold(filepath.Ext(path), ".png") {
		if len(out.Image) == 0 {
			return fmt.Errorf("%s has no PNG render; use a .json path", out.Type)
		}
		payload = out.Image
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func abbreviate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
