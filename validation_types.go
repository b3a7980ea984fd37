package slopplot

// Severity indicates how serious a code warning is
type Severity string

const (
	SeverityInfo    Severity = "info"    // Informational (might be expected)
	SeverityWarning Severity = "warning" // Potentially problematic
	SeverityError   Severity = "error"   // Likely to fail when executed
)

// WarningCode is a machine-readable identifier for code warnings
type WarningCode string

const (
	WarningCodeRenderCall       WarningCode = "RENDER_CALL"
	WarningCodeForeignImport    WarningCode = "FOREIGN_IMPORT"
	WarningCodeOutputUnassigned WarningCode = "OUTPUT_UNASSIGNED"
	WarningCodeDataRedefined    WarningCode = "DATA_REDEFINED"
	WarningCodeEmptyCode        WarningCode = "EMPTY_CODE"
)

// CodeWarning represents something in the generated code that breaks the instruction's rules.
// These are informational - the generator never rejects or rewrites code based on warnings.
type CodeWarning struct {
	Code     WarningCode // Machine-readable code
	Rule     string      // Name of the rule that produced it
	Line     int         // 1-based line, 0 when not tied to a line
	Message  string      // Human-readable warning
	Severity Severity    // How serious this warning is
}

// LintRule interface allows adding custom checks over generated code
type LintRule interface {
	// Name returns a human-readable name for this rule
	Name() string

	// Check inspects code written for the given flavor and returns warnings
	Check(flavor Flavor, code string) []CodeWarning
}
