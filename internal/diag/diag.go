// Package diag carries the structured warning/error taxonomy shared by every
// stage of the chart pipeline: lexer, AST builder, evaluator, processors,
// precomputer and the BMSON ingester. Parsing never panics a caller off a
// malformed chart; it collects diagnostics instead and lets the caller
// decide whether a partial chart is still worth playing.
package diag

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Stage names the pipeline stage that raised a diagnostic.
type Stage string

const (
	StageLex        Stage = "lex"
	StageAST        Stage = "ast"
	StageEval       Stage = "eval"
	StageProcess    Stage = "process"
	StagePrecompute Stage = "precompute"
	StageBMSON      Stage = "bmson"
	StagePlayback   Stage = "playback"
	StageValidity   Stage = "validity"
)

// Category narrows a Stage into a specific condition.
type Category string

const (
	CategoryLexWarning      Category = "LexWarning"
	CategoryASTError        Category = "ASTError"
	CategorySemanticWarning Category = "SemanticWarning"
	CategoryValidityWarning Category = "ValidityWarning"
	CategoryBMSONError      Category = "BMSONError"
	CategoryInternalError   Category = "InternalError"
)

// Range is a half-open-by-convention source location; Line/Col are 1-based.
// EndLine/EndCol are left zero for point diagnostics.
type Range struct {
	Line, Col       int
	EndLine, EndCol int
}

type Diagnostic struct {
	Category Category
	Code     string
	Message  string
	File     string
	Range    Range
	Severity Severity
	Stage    Stage
	Notes    []string
}

func (d Diagnostic) Error() string {
	if d.File != "" && d.Range.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Range.Line, d.Range.Col, d.Category, d.Message)
	}
	if d.Range.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", d.Range.Line, d.Range.Col, d.Category, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Category, d.Message)
}

func Warn(stage Stage, category Category, code, message string, rng Range) Diagnostic {
	return Diagnostic{Category: category, Code: code, Message: message, Range: rng, Severity: SeverityWarning, Stage: stage}
}

func Err(stage Stage, category Category, code, message string, rng Range) Diagnostic {
	return Diagnostic{Category: category, Code: code, Message: message, Range: rng, Severity: SeverityError, Stage: stage}
}

// List is an aggregate that also satisfies error once it contains at least
// one error-severity diagnostic, mirroring the teacher's DiagnosticsError.
type List struct {
	Diagnostics []Diagnostic
}

func (l *List) Add(d Diagnostic) { l.Diagnostics = append(l.Diagnostics, d) }

func (l *List) Error() string {
	if l == nil || len(l.Diagnostics) == 0 {
		return ""
	}
	return l.Diagnostics[0].Error()
}

func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// AsError returns a *List wrapping diags if it contains an error-severity
// entry, otherwise nil; the idiom every stage uses at its boundary.
func AsError(diags []Diagnostic) error {
	if !HasErrors(diags) {
		return nil
	}
	return &List{Diagnostics: diags}
}
