// Package resolver implements §4.3 of the Lumen specification: a two-pass
// symbol resolver covering declaration binding, effect-row discipline,
// state-machine verification, cross-module import resolution, and
// trait/impl matching.
package resolver

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/span"
)

// Error is one resolve-stage error. Resolution accumulates errors (§7)
// rather than failing fast.
type Error struct {
	Kind        string
	Code        string
	msg         string
	span        span.Span
	Suggestions []string
}

func (e *Error) Span() span.Span { return e.span }
func (e *Error) Message() string { return e.msg }
func (e *Error) Error() string   { return fmt.Sprintf("%s: %s", e.span, e.msg) }

// Resolve error codes, E0100-E0199, ported from the original compiler's
// error_codes.rs resolve_error_code table.
const (
	codeUndefinedType           = "E0100"
	codeGenericArityMismatch    = "E0101"
	codeUndefinedCell           = "E0102"
	codeUndefinedTrait          = "E0103"
	codeUndefinedTool           = "E0104"
	codeDuplicate               = "E0105"
	codeMissingEffectGrant      = "E0106"
	codeUndeclaredEffect        = "E0107"
	codeEffectContractViolation = "E0108"
	codeNondeterministicOp      = "E0109"
	codeMachineUnknownInitial   = "E0110"
	codeMachineUnknownTarget    = "E0111"
	codeMachineUnreachable      = "E0112"
	codeMachineMissingTerminal  = "E0113"
	codeMachineArgCount         = "E0114"
	codeMachineArgType          = "E0115"
	codeCircularImport          = "E0121"
	codeModuleNotFound          = "E0122"
	codeImportedSymbolNotFound  = "E0123"
	codeTraitMissingMethods     = "E0124"
	codeTraitSignatureMismatch  = "E0125"
)

func errUndefinedType(name string, sp span.Span, suggestions []string) *Error {
	return &Error{
		Kind: "UndefinedType", Code: codeUndefinedType,
		msg: fmt.Sprintf("undefined type %q", name), span: sp, Suggestions: suggestions,
	}
}

func errGenericArityMismatch(name string, want, got int, sp span.Span) *Error {
	return &Error{
		Kind: "GenericArityMismatch", Code: codeGenericArityMismatch,
		msg:  fmt.Sprintf("%q expects %d type argument(s), found %d", name, want, got),
		span: sp,
	}
}

func errUndefinedCell(name string, sp span.Span, suggestions []string) *Error {
	return &Error{
		Kind: "UndefinedCell", Code: codeUndefinedCell,
		msg: fmt.Sprintf("undefined cell %q", name), span: sp, Suggestions: suggestions,
	}
}

// errUndefinedMachine reports a `transition machine::name` referencing a
// state machine that was never declared. Shares UndefinedCell's code: both
// describe a call-like reference to an undeclared top-level name.
func errUndefinedMachine(name string, sp span.Span, suggestions []string) *Error {
	return &Error{
		Kind: "UndefinedMachine", Code: codeUndefinedCell,
		msg: fmt.Sprintf("undefined state machine %q", name), span: sp, Suggestions: suggestions,
	}
}

func errUndefinedTrait(name string, sp span.Span, suggestions []string) *Error {
	return &Error{
		Kind: "UndefinedTrait", Code: codeUndefinedTrait,
		msg: fmt.Sprintf("undefined trait %q", name), span: sp, Suggestions: suggestions,
	}
}

func errUndefinedTool(name string, sp span.Span, suggestions []string) *Error {
	return &Error{
		Kind: "UndefinedTool", Code: codeUndefinedTool,
		msg: fmt.Sprintf("tool %q was not declared with \"use tool\"", name), span: sp, Suggestions: suggestions,
	}
}

func errDuplicate(name string, firstSp, sp span.Span) *Error {
	return &Error{
		Kind: "Duplicate", Code: codeDuplicate,
		msg: fmt.Sprintf("%q is already declared at %s", name, firstSp), span: sp,
	}
}

func errMissingEffectGrant(effect, cellName string, sp span.Span) *Error {
	return &Error{
		Kind: "MissingEffectGrant", Code: codeMissingEffectGrant,
		msg:  fmt.Sprintf("cell %q requires effect %q but no grant covers it here", cellName, effect),
		span: sp,
	}
}

func errUndeclaredEffect(effect, cellName string, sp span.Span) *Error {
	return &Error{
		Kind: "UndeclaredEffect", Code: codeUndeclaredEffect,
		msg:  fmt.Sprintf("cell %q performs effect %q not present in its effect row", cellName, effect),
		span: sp,
	}
}

func errEffectContractViolation(callerName, calleeName, effect string, sp span.Span) *Error {
	return &Error{
		Kind: "EffectContractViolation", Code: codeEffectContractViolation,
		msg: fmt.Sprintf("%q calls %q which requires effect %q, not present in %q's effects or grants",
			callerName, calleeName, effect, callerName),
		span: sp,
	}
}

func errNondeterministicOp(cellName, calleeName string, sp span.Span) *Error {
	return &Error{
		Kind: "NondeterministicOperation", Code: codeNondeterministicOp,
		msg:  fmt.Sprintf("@deterministic cell %q calls %q, which performs a nondeterministic effect", cellName, calleeName),
		span: sp,
	}
}

func errMachineUnknownInitial(machine, state string, sp span.Span) *Error {
	return &Error{
		Kind: "MachineUnknownInitial", Code: codeMachineUnknownInitial,
		msg:  fmt.Sprintf("machine %q has no initial state named %q", machine, state),
		span: sp,
	}
}

func errMachineUnknownTarget(machine, transition, target string, sp span.Span) *Error {
	return &Error{
		Kind: "MachineUnknownTransition", Code: codeMachineUnknownTarget,
		msg:  fmt.Sprintf("machine %q: transition %q targets undeclared state %q", machine, transition, target),
		span: sp,
	}
}

func errMachineUnreachable(machine, state string, sp span.Span) *Error {
	return &Error{
		Kind: "MachineUnreachableState", Code: codeMachineUnreachable,
		msg:  fmt.Sprintf("machine %q: state %q is unreachable from its initial state", machine, state),
		span: sp,
	}
}

func errMachineMissingTerminal(machine string, sp span.Span) *Error {
	return &Error{
		Kind: "MachineMissingTerminal", Code: codeMachineMissingTerminal,
		msg:  fmt.Sprintf("machine %q declares no terminal state", machine),
		span: sp,
	}
}

func errMachineArgCount(machine, transition string, want, got int, sp span.Span) *Error {
	return &Error{
		Kind: "MachineTransitionArgCount", Code: codeMachineArgCount,
		msg: fmt.Sprintf("machine %q: transition %q passes %d argument(s), target state expects %d",
			machine, transition, got, want),
		span: sp,
	}
}

func errMachineArgType(machine, transition, param string, sp span.Span) *Error {
	return &Error{
		Kind: "MachineTransitionArgType", Code: codeMachineArgType,
		msg:  fmt.Sprintf("machine %q: transition %q argument for %q has the wrong type", machine, transition, param),
		span: sp,
	}
}

func errCircularImport(cycle []string, sp span.Span) *Error {
	return &Error{
		Kind: "CircularImport", Code: codeCircularImport,
		msg:  fmt.Sprintf("circular import: %s", joinArrow(cycle)),
		span: sp,
	}
}

func errModuleNotFound(path string, tried []string, sp span.Span) *Error {
	return &Error{
		Kind: "ModuleNotFound", Code: codeModuleNotFound,
		msg:  fmt.Sprintf("module %q not found (tried %s)", path, joinArrow(tried)),
		span: sp,
	}
}

func errImportedSymbolNotFound(symbol, module string, sp span.Span, suggestions []string) *Error {
	return &Error{
		Kind: "ImportedSymbolNotFound", Code: codeImportedSymbolNotFound,
		msg: fmt.Sprintf("module %q does not export %q", module, symbol), span: sp, Suggestions: suggestions,
	}
}

func errTraitMissingMethods(traitName, typeName string, missing []string, sp span.Span) *Error {
	return &Error{
		Kind: "TraitMissingMethods", Code: codeTraitMissingMethods,
		msg:  fmt.Sprintf("impl %s for %s is missing method(s): %s", traitName, typeName, joinArrow(missing)),
		span: sp,
	}
}

func errTraitSignatureMismatch(traitName, typeName, method string, sp span.Span) *Error {
	return &Error{
		Kind: "TraitMethodSignatureMismatch", Code: codeTraitSignatureMismatch,
		msg:  fmt.Sprintf("impl %s for %s: method %q has an incompatible signature", traitName, typeName, method),
		span: sp,
	}
}

func joinArrow(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}
