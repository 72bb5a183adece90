// Package compiler wires the completed stages into the single pipeline
// spec.md §7 describes: lex, parse, resolve (the whole import graph),
// type-check, verify constraints, check ownership, lower to LIR, and
// optionally optimize. It is the one place that calls every stage package in
// sequence, the way pkg/corset.Compiler.Compile calls compiler.ResolveCircuit,
// compiler.TypeCheckCircuit, compiler.PreprocessCircuit and
// compiler.TranslateCircuit in turn, accumulating errors across stages
// rather than stopping at the first one.
package compiler

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/lumen-lang/lumen/pkg/constraint"
	"github.com/lumen-lang/lumen/pkg/diagnostics"
	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/lir"
	"github.com/lumen-lang/lumen/pkg/lower"
	"github.com/lumen-lang/lumen/pkg/optimize"
	"github.com/lumen-lang/lumen/pkg/ownership"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/resolver"
	"github.com/lumen-lang/lumen/pkg/source"
	"github.com/lumen-lang/lumen/pkg/typecheck"
)

// Config threads the pipeline's optional behavior explicitly, the way the
// teacher threads corset.CompilationConfig and asm.LoweringConfig through
// its own compiler rather than reaching for a global.
type Config struct {
	// Optimize runs pkg/optimize's nop-removal pass over the lowered
	// module before it is handed to the VM or WASM backend.
	Optimize bool
}

// Loader resolves import paths for the whole project rooted at one entry
// file. resolver.FileLoader{} reads from disk; tests can supply their own.
type Loader = resolver.Loader

// Artifact is everything one entry file's compile produced, for callers
// that need more than pass/fail (dump-lir, run).
type Artifact struct {
	Path    string
	Source  *source.ExtractedSource
	Project *resolver.Project
	Module  *resolver.Module
	Lir     *lir.LirModule
}

// ReadSource reads path and extracts its Lumen code unit, choosing
// Markdown-block or raw extraction by extension — the same decision
// resolver.FileLoader.Load makes per candidate path (§6.1).
func ReadSource(path string) (*source.ExtractedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".md") {
		return source.ExtractBlocks(data), nil
	}

	return source.ExtractRaw(data), nil
}

// Compile runs the full pipeline over path. It lexes and parses path itself
// (so its own lex/parse errors are reported, unlike a dependency loaded
// through loader, whose errors are only its caller's concern per
// resolver.FileLoader's own doc comment), resolves the whole import graph
// rooted at path, type-checks, verifies constraints, checks ownership, and
// lowers to LIR, optimizing the result if cfg.Optimize is set.
//
// The third return value is reserved for invocation failures (the file
// can't be found or read) — §6.2's exit code 2, as distinct from compile
// diagnostics (exit code 1). Every stage after Lex and Lower runs even when
// an earlier stage produced errors, per §7's "unconditionally on the output
// of the previous"; Lex and Lower are fail-fast, since neither leaves a
// usable output for the next stage to run against.
func Compile(path string, loader Loader, cfg Config) (*Artifact, *diagnostics.CompileError, error) {
	_, resolvedPath, tried, loadErr := loader.Load(path)
	if loadErr != nil {
		return nil, nil, &NotFoundError{Path: path, Tried: tried}
	}

	extracted, err := ReadSource(resolvedPath)
	if err != nil {
		return nil, nil, err
	}

	art := &Artifact{Path: resolvedPath, Source: extracted}

	toks, lexErr := lexer.New(extracted.Code, 1, 1).Tokenize()
	if lexErr != nil {
		log.Debugf("lex: %s failed", resolvedPath)
		return art, diagnostics.NewLex(lexErr), nil
	}

	prog, parseErrs := parser.Parse(toks)
	log.Debugf("parse: %s produced %d item(s), %d error(s)", resolvedPath, len(prog.Items), len(parseErrs))

	proj := resolver.ResolveProject(resolvedPath, loader)
	art.Project = proj

	mod, ok := proj.Modules[resolvedPath]
	if !ok {
		// ResolveProject's own loader.Load disagreed with ours about
		// resolvedPath (a race against the filesystem); report what it
		// collected and stop, there is no module to lower.
		stages := stagesOf(parseErrs, proj.Errors, nil, nil, nil)
		return art, diagnostics.NewMultiple(stages), nil
	}

	art.Module = mod

	typeErrs := typecheck.Check(mod)
	log.Debugf("type: %s produced %d error(s)", resolvedPath, len(typeErrs))

	constraintErrs := constraint.Check(mod)
	log.Debugf("constraint: %s produced %d error(s)", resolvedPath, len(constraintErrs))

	ownershipErrs := ownership.Check(mod)
	log.Debugf("ownership: %s produced %d error(s)", resolvedPath, len(ownershipErrs))

	stages := stagesOf(parseErrs, proj.Errors, typeErrs, constraintErrs, ownershipErrs)

	lirModule, lowerErrs := lower.Lower(mod, extracted.Code)
	if len(lowerErrs) > 0 {
		log.Debugf("lower: %s failed with %d error(s)", resolvedPath, len(lowerErrs))
		// Lower fails fast: stop here. Its own accumulation loop collects
		// every cell's errors, but only the first is carried forward, the
		// same fallback-to-first-element convention error_code uses for
		// every other accumulating stage.
		stages = append(stages, diagnostics.NewLower(lowerErrs[0]))
		return art, diagnostics.NewMultiple(stages), nil
	}

	art.Lir = lirModule

	if cfg.Optimize {
		optimize.Module(lirModule)
	}

	if len(stages) > 0 {
		return art, diagnostics.NewMultiple(stages), nil
	}

	return art, nil, nil
}

// stagesOf wraps each non-empty stage result into a *diagnostics.CompileError,
// skipping empty ones, so NewMultiple never has to special-case a stage that
// didn't contribute.
func stagesOf(parseErrs []*parser.Error, resolveErrs []*resolver.Error, typeErrs []*typecheck.Error,
	constraintErrs []*constraint.Error, ownershipErrs []*ownership.Error) []*diagnostics.CompileError {
	var stages []*diagnostics.CompileError

	if len(parseErrs) > 0 {
		stages = append(stages, diagnostics.NewParse(parseErrs))
	}

	if len(resolveErrs) > 0 {
		stages = append(stages, diagnostics.NewResolve(resolveErrs))
	}

	if len(typeErrs) > 0 {
		stages = append(stages, diagnostics.NewType(typeErrs))
	}

	if len(constraintErrs) > 0 {
		stages = append(stages, diagnostics.NewConstraint(constraintErrs))
	}

	if len(ownershipErrs) > 0 {
		stages = append(stages, diagnostics.NewOwnership(ownershipErrs))
	}

	return stages
}

// NotFoundError is returned by Compile when path (and every extension
// resolver.Loader tries on its behalf) can't be found, §6.2's invocation
// error (exit code 2) rather than a compile diagnostic.
type NotFoundError struct {
	Path  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return "lumen: " + e.Path + " not found (tried " + strings.Join(e.Tried, ", ") + ")"
}
