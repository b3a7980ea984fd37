package slopplot

import (
	"sync"
)

// LintEngine manages lint rules and executes them
type LintEngine struct {
	rules []LintRule
	mu    sync.RWMutex
}

var (
	globalLintEngine     *LintEngine
	globalLintEngineOnce sync.Once
)

// GetLintEngine returns the global lint engine (singleton)
func GetLintEngine() *LintEngine {
	globalLintEngineOnce.Do(func() {
		globalLintEngine = NewLintEngine()
		globalLintEngine.registerDefaultRules()
	})
	return globalLintEngine
}

// NewLintEngine returns an engine with no rules.
func NewLintEngine() *LintEngine {
	return &LintEngine{rules: make([]LintRule, 0)}
}

// registerDefaultRules registers the built-in lint rules
func (le *LintEngine) registerDefaultRules() {
	le.AddRule(&EmptyCodeRule{})
	le.AddRule(&RenderCallRule{})
	le.AddRule(&ImportRule{})
	le.AddRule(&OutputAssignmentRule{})
	le.AddRule(&DataRedefinitionRule{})
}

// AddRule adds a lint rule to the engine
func (le *LintEngine) AddRule(rule LintRule) {
	le.mu.Lock()
	defer le.mu.Unlock()
	le.rules = append(le.rules, rule)
}

// RemoveRule removes a lint rule by name
func (le *LintEngine) RemoveRule(name string) bool {
	le.mu.Lock()
	defer le.mu.Unlock()

	for i, rule := range le.rules {
		if rule.Name() == name {
			le.rules = append(le.rules[:i], le.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Lint runs all rules and returns warnings
func (le *LintEngine) Lint(flavor Flavor, code string) []CodeWarning {
	le.mu.RLock()
	defer le.mu.RUnlock()

	var warnings []CodeWarning
	for _, rule := range le.rules {
		warnings = append(warnings, rule.Check(flavor, code)...)
	}
	return warnings
}

// LintCode returns rule violations in generated code using the global engine.
// The result is INFORMATIONAL; callers decide whether to show it.
func LintCode(flavor Flavor, code string) []CodeWarning {
	return GetLintEngine().Lint(flavor, code)
}

// FilterWarningsBySeverity returns warnings matching the specified severities
func FilterWarningsBySeverity(warnings []CodeWarning, severities ...Severity) []CodeWarning {
	filtered := make([]CodeWarning, 0)
	severityMap := make(map[Severity]bool)
	for _, s := range severities {
		severityMap[s] = true
	}

	for _, w := range warnings {
		if severityMap[w.Severity] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// FilterWarningsByCode returns warnings matching the specified codes
func FilterWarningsByCode(warnings []CodeWarning, codes ...WarningCode) []CodeWarning {
	filtered := make([]CodeWarning, 0)
	codeMap := make(map[WarningCode]bool)
	for _, c := range codes {
		codeMap[c] = true
	}

	for _, w := range warnings {
		if codeMap[w.Code] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}
