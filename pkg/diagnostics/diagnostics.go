// Package diagnostics implements §7's error-handling design on top of
// pkg/codes' registry: the CompileError taxonomy, fail-fast-vs-accumulate
// propagation, and the text/JUnit/JSON rendering §6.2 names for
// cmd/lumen-check.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/lumen-lang/lumen/pkg/codes"
	"github.com/lumen-lang/lumen/pkg/constraint"
	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/lower"
	"github.com/lumen-lang/lumen/pkg/ownership"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/resolver"
	"github.com/lumen-lang/lumen/pkg/span"
	"github.com/lumen-lang/lumen/pkg/typecheck"
)

// Severity is a diagnostic's reporting level.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// EditKind is the fix-it edit a Diagnostic's FixIt applies, per §7's
// "Replace | Insert | Delete" contract. The fix-it engine that actually
// computes these lives outside the core; this struct only carries what a
// stage already knows when it reports an error.
type EditKind string

const (
	EditReplace EditKind = "replace"
	EditInsert  EditKind = "insert"
	EditDelete  EditKind = "delete"
)

// FixIt is a suggested source edit attached to a Diagnostic.
type FixIt struct {
	Kind EditKind
	Span span.Span
	Text string
}

// Diagnostic is one fully resolved, renderable compiler message: a stage
// error plus everything needed to print it without consulting the stage
// package again.
type Diagnostic struct {
	File     string
	Span     span.Span
	Severity Severity
	Code     string
	Message  string
	Hint     string
	FixIt    *FixIt
}

// Stage names one of §7's CompileError variants.
type Stage string

const (
	StageLex        Stage = "lex"
	StageParse      Stage = "parse"
	StageResolve    Stage = "resolve"
	StageType       Stage = "type"
	StageConstraint Stage = "constraint"
	StageOwnership  Stage = "ownership"
	StageLower      Stage = "lower"
	StageTypestate  Stage = "typestate"
	StageSession    Stage = "session"
	StageMultiple   Stage = "multiple"
)

// CompileError is the top-level error taxonomy of §7: one tagged value
// covering every stage, with Multiple wrapping more than one stage's
// contribution into a single error the pipeline can return. Only the
// field matching Stage is populated; Go has no sum type, so unlike the
// original enum this leaves the rest as nil/zero, the same shape
// pkg/resolver's own *Error already uses for its optional Suggestions.
type CompileError struct {
	Stage Stage

	Lex        *lexer.Error
	Parse      []*parser.Error
	Resolve    []*resolver.Error
	Type       []*typecheck.Error
	Constraint []*constraint.Error
	Ownership  []*ownership.Error
	Lower      *lower.Error
	Typestate  string
	Session    string
	Multiple   []*CompileError
}

func NewLex(e *lexer.Error) *CompileError { return &CompileError{Stage: StageLex, Lex: e} }

func NewParse(errs []*parser.Error) *CompileError {
	return &CompileError{Stage: StageParse, Parse: errs}
}

func NewResolve(errs []*resolver.Error) *CompileError {
	return &CompileError{Stage: StageResolve, Resolve: errs}
}

func NewType(errs []*typecheck.Error) *CompileError {
	return &CompileError{Stage: StageType, Type: errs}
}

func NewConstraint(errs []*constraint.Error) *CompileError {
	return &CompileError{Stage: StageConstraint, Constraint: errs}
}

func NewOwnership(errs []*ownership.Error) *CompileError {
	return &CompileError{Stage: StageOwnership, Ownership: errs}
}

func NewLower(e *lower.Error) *CompileError { return &CompileError{Stage: StageLower, Lower: e} }

func NewTypestate(msg string) *CompileError {
	return &CompileError{Stage: StageTypestate, Typestate: msg}
}

func NewSession(msg string) *CompileError {
	return &CompileError{Stage: StageSession, Session: msg}
}

// NewMultiple wraps more than one stage's CompileError into one, per §7's
// "total errors from all stages are merged into Multiple if more than one
// stage contributed". A single-element errs collapses to that element
// directly rather than wrapping it, so Code() and Error() never have to
// special-case a Multiple of one.
func NewMultiple(errs []*CompileError) *CompileError {
	if len(errs) == 1 {
		return errs[0]
	}

	return &CompileError{Stage: StageMultiple, Multiple: errs}
}

// Code returns the stable code of the first sub-error, matching
// error_codes.rs's error_code fallback-to-first-element behavior exactly,
// including its documented fallback codes for an empty accumulated slice.
func (e *CompileError) Code() string {
	switch e.Stage {
	case StageLex:
		return codes.LexCode(e.Lex)
	case StageParse:
		if len(e.Parse) == 0 {
			return "E0010"
		}
		return codes.ParseCode(e.Parse[0])
	case StageResolve:
		if len(e.Resolve) == 0 {
			return "E0100"
		}
		return codes.ResolverCode(e.Resolve[0])
	case StageType:
		if len(e.Type) == 0 {
			return "E0200"
		}
		return codes.TypeCode(e.Type[0])
	case StageConstraint:
		if len(e.Constraint) == 0 {
			return "E0300"
		}
		return codes.ConstraintCode(e.Constraint[0])
	case StageOwnership:
		if len(e.Ownership) == 0 {
			return "E0400"
		}
		return codes.OwnershipCode(e.Ownership[0])
	case StageLower:
		return "E0500"
	case StageTypestate:
		return "E0600"
	case StageSession:
		return "E0700"
	case StageMultiple:
		if len(e.Multiple) == 0 {
			return "E0500"
		}
		return e.Multiple[0].Code()
	default:
		return "E0500"
	}
}

// Error implements the error interface, summarizing the first sub-error.
func (e *CompileError) Error() string {
	diags := e.Diagnostics("")
	if len(diags) == 0 {
		return fmt.Sprintf("[%s] %s stage failed", e.Code(), e.Stage)
	}

	if len(diags) == 1 {
		return diags[0].Message
	}

	return fmt.Sprintf("%s (and %d more)", diags[0].Message, len(diags)-1)
}

// Diagnostics flattens a CompileError into the renderable list every
// format in this package consumes. file is stamped onto every Diagnostic
// verbatim; callers juggling multiple input files call this once per file
// and concatenate.
func (e *CompileError) Diagnostics(file string) []Diagnostic {
	var out []Diagnostic

	switch e.Stage {
	case StageLex:
		if e.Lex != nil {
			out = append(out, fromSpanned(file, codes.LexCode(e.Lex), e.Lex))
		}

	case StageParse:
		for _, pe := range e.Parse {
			out = append(out, fromSpanned(file, codes.ParseCode(pe), pe))
		}

	case StageResolve:
		for _, re := range e.Resolve {
			d := fromSpanned(file, codes.ResolverCode(re), re)
			if len(re.Suggestions) > 0 {
				d.Hint = "did you mean " + strings.Join(re.Suggestions, ", ") + "?"
			}
			out = append(out, d)
		}

	case StageType:
		for _, te := range e.Type {
			out = append(out, fromSpanned(file, codes.TypeCode(te), te))
		}

	case StageConstraint:
		for _, ce := range e.Constraint {
			out = append(out, fromSpanned(file, codes.ConstraintCode(ce), ce))
		}

	case StageOwnership:
		for _, oe := range e.Ownership {
			out = append(out, fromSpanned(file, codes.OwnershipCode(oe), oe))
		}

	case StageLower:
		if e.Lower != nil {
			out = append(out, fromSpanned(file, codes.LowerCode(e.Lower), e.Lower))
		}

	case StageTypestate:
		out = append(out, Diagnostic{File: file, Severity: SeverityError, Code: "E0600", Message: e.Typestate})

	case StageSession:
		out = append(out, Diagnostic{File: file, Severity: SeverityError, Code: "E0700", Message: e.Session})

	case StageMultiple:
		for _, sub := range e.Multiple {
			out = append(out, sub.Diagnostics(file)...)
		}
	}

	return out
}

// spanned is the shape every stage's *Error already exposes: a span and a
// message, as pkg/sexp.SyntaxError defined it.
type spanned interface {
	Span() span.Span
	Message() string
}

func fromSpanned(file, code string, e spanned) Diagnostic {
	return Diagnostic{
		File:     file,
		Span:     e.Span(),
		Severity: SeverityError,
		Code:     code,
		Message:  e.Message(),
	}
}
