package slopplot

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	renderCallPattern = regexp.MustCompile(`\.(show|savefig|write_image|write_html)\s*\(`)
	importPattern     = regexp.MustCompile(`^\s*import\s+(.+)$`)
	fromImportPattern = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`)
)

// EmptyCodeRule flags a fenced block with nothing in it
type EmptyCodeRule struct{}

func (r *EmptyCodeRule) Name() string {
	return "Empty Code"
}

func (r *EmptyCodeRule) Check(_ Flavor, code string) []CodeWarning {
	if strings.TrimSpace(code) != "" {
		return nil
	}
	return []CodeWarning{{
		Code:     WarningCodeEmptyCode,
		Rule:     r.Name(),
		Message:  "generated code block is empty",
		Severity: SeverityError,
	}}
}

// RenderCallRule flags attempts to display or save the figure
type RenderCallRule struct{}

func (r *RenderCallRule) Name() string {
	return "Render Call"
}

func (r *RenderCallRule) Check(_ Flavor, code string) []CodeWarning {
	var warnings []CodeWarning
	for i, line := range codeLines(code) {
		if m := renderCallPattern.FindStringSubmatch(line); m != nil {
			warnings = append(warnings, CodeWarning{
				Code:     WarningCodeRenderCall,
				Rule:     r.Name(),
				Line:     i + 1,
				Message:  fmt.Sprintf("code calls %s(); the figure should only be built, not rendered", m[1]),
				Severity: SeverityWarning,
			})
		}
	}
	return warnings
}

// ImportRule flags imports of anything but the flavor's plotting library
type ImportRule struct{}

func (r *ImportRule) Name() string {
	return "Import"
}

func (r *ImportRule) Check(flavor Flavor, code string) []CodeWarning {
	allowed := map[string]bool{}
	for _, h := range flavor.Handles() {
		root, _, _ := strings.Cut(h.Module, ".")
		allowed[root] = true
	}

	var warnings []CodeWarning
	for i, line := range codeLines(code) {
		for _, module := range importedModules(line) {
			root, _, _ := strings.Cut(module, ".")
			if allowed[root] {
				continue
			}
			warnings = append(warnings, CodeWarning{
				Code:     WarningCodeForeignImport,
				Rule:     r.Name(),
				Line:     i + 1,
				Message:  fmt.Sprintf("code imports %s, which is not pre-bound for %s", module, flavor),
				Severity: SeverityWarning,
			})
		}
	}
	return warnings
}

// OutputAssignmentRule flags code that never binds the output variable
type OutputAssignmentRule struct{}

func (r *OutputAssignmentRule) Name() string {
	return "Output Assignment"
}

func (r *OutputAssignmentRule) Check(flavor Flavor, code string) []CodeWarning {
	out := flavor.OutputVariable()
	for _, line := range codeLines(code) {
		if assigns(line, out) {
			return nil
		}
	}
	return []CodeWarning{{
		Code:     WarningCodeOutputUnassigned,
		Rule:     r.Name(),
		Message:  fmt.Sprintf("no assignment to `%s` found; execution will fail with a missing output", out),
		Severity: SeverityError,
	}}
}

// DataRedefinitionRule flags code that overwrites the input data
type DataRedefinitionRule struct{}

func (r *DataRedefinitionRule) Name() string {
	return "Data Redefinition"
}

func (r *DataRedefinitionRule) Check(_ Flavor, code string) []CodeWarning {
	var warnings []CodeWarning
	for i, line := range codeLines(code) {
		// Only top-level statements replace the namespace binding.
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		if assigns(line, DataVariable) {
			warnings = append(warnings, CodeWarning{
				Code:     WarningCodeDataRedefined,
				Rule:     r.Name(),
				Line:     i + 1,
				Message:  fmt.Sprintf("code reassigns `%s` instead of using the provided data", DataVariable),
				Severity: SeverityInfo,
			})
		}
	}
	return warnings
}

// codeLines splits code into lines with trailing comments removed.
// Line indexes are preserved so warnings can point at the source.
func codeLines(code string) []string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(stripComment(line), " \t\r")
	}
	return lines
}

// stripComment drops a # comment that is not inside a string literal.
func stripComment(line string) string {
	var quote rune
	for i, c := range line {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}

func importedModules(line string) []string {
	if m := fromImportPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	m := importPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	var modules []string
	for _, part := range strings.Split(m[1], ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(part), " ")
		if name != "" {
			modules = append(modules, name)
		}
	}
	return modules
}

// assigns reports whether the statement on line binds name, including tuple targets,
// annotated assignments and the walrus operator.
func assigns(line, name string) bool {
	walrus := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*:=`)
	if walrus.MatchString(line) {
		return true
	}

	idx := assignmentIndex(line)
	if idx < 0 {
		return false
	}
	targets := strings.FieldsFunc(line[:idx], func(c rune) bool {
		return c == ',' || c == '(' || c == ')' || c == '[' || c == ']' || c == ':' || c == ' ' || c == '\t' || c == '*'
	})
	for i, target := range targets {
		// In "x: T = v" only the first field is a target.
		if strings.Contains(line[:idx], ":") && i > 0 {
			break
		}
		if target == name {
			return true
		}
	}
	return false
}

// assignmentIndex returns the position of the first plain or augmented "=" of a statement,
// or -1 when the line is not an assignment.
func assignmentIndex(line string) int {
	depth := 0
	var quote rune
	for i, c := range line {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == '=' && depth == 0:
			next := byte(0)
			if i+1 < len(line) {
				next = line[i+1]
			}
			prev := byte(0)
			if i > 0 {
				prev = line[i-1]
			}
			if next == '=' || prev == '=' || prev == '!' || prev == '<' || prev == '>' {
				continue
			}
			end := i
			if strings.ContainsRune("+-*/%&|^@", rune(prev)) {
				end = i - 1
			}
			return end
		}
	}
	return -1
}
