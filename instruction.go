package slopplot

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultLanguage is the fence tag the instruction asks for and the extractor looks for.
const DefaultLanguage = "python"

// BuildInstruction composes the single user message sent to the model.
func BuildInstruction(flavor Flavor, prompt string, data any) (string, error) {
	if !flavor.IsValid() {
		return "", &ConfigError{Field: "flavor", Value: string(flavor), Reason: "unknown flavor"}
	}

	rendered, err := RenderData(data)
	if err != nil {
		return "", err
	}

	out := flavor.OutputVariable()

	return strings.Join([]string{
		"The user will ask you to create a plot based on the following guidelines:",
		prompt,
		"",
		"The data for generating this plot is provided as follows here:",
		rendered,
		"",
		fmt.Sprintf("You must generate %s code to create this plot. Ensure that the code is complete and can be run as is.", flavor.libraryName()),
		"You may first think about how to plot the data and meet the user's request to the best of your ability.",
		fmt.Sprintf("Format your code as follows ```%s\n<your code here>\n```.", DefaultLanguage),
		"Rules:",
		fmt.Sprintf("- Write a plain script, not a function. The data is already defined in the environment as the variable `%s`; do not import, load or redefine it.", DataVariable),
		fmt.Sprintf("- Assign %s to a variable named `%s`.", flavor.objectDescription(), out),
		fmt.Sprintf("- %s are already imported. Do not import or use any other libraries.", flavor.importDescription()),
		fmt.Sprintf("- Do not try to render the plot: do not call show(), savefig() or %s.show().", out),
	}, "\n"), nil
}

// RenderData converts data to the textual form embedded in the instruction.
// Strings and byte slices pass through, fmt.Stringer values use String(), and anything else
// becomes indented JSON.
func RenderData(data any) (string, error) {
	switch v := data.(type) {
	case nil:
		return "null", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", &ConfigError{
			Field:  "data",
			Value:  fmt.Sprintf("%T", data),
			Reason: fmt.Sprintf("cannot be rendered as JSON: %v", err),
		}
	}
	return string(encoded), nil
}
