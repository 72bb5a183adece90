package compiler

import (
	"github.com/lumen-lang/lumen/pkg/diagnostics"
	"github.com/lumen-lang/lumen/pkg/toolprovider"
	"github.com/lumen-lang/lumen/pkg/vm"
	"github.com/lumen-lang/lumen/pkg/wasm"
)

// Run compiles path and executes cellName against the resulting module,
// grounding cmd/lumen-check's "run" subcommand. The three error-shaped
// return values are kept distinct because they belong to different
// domains: a *diagnostics.CompileError is a compile-time failure (exit code
// 1), a *vm.Error is a runtime failure inside an otherwise valid module,
// and the plain error is an invocation failure (exit code 2).
func Run(path string, loader Loader, cfg Config, registry *toolprovider.Registry,
	cellName string, args []vm.Value) (vm.Value, *diagnostics.CompileError, *vm.Error, error) {
	art, compileErr, err := Compile(path, loader, cfg)
	if err != nil {
		return vm.Value{}, nil, nil, err
	}

	if compileErr != nil {
		return vm.Value{}, compileErr, nil, nil
	}

	machine := vm.New(registry)
	machine.Load(art.Lir)

	val, vmErr := machine.Execute(cellName, args)

	return val, nil, vmErr, nil
}

// CompileWasm compiles path and lowers the result to a WASM module,
// grounding a `--emit=wasm` mode of cmd/lumen-check.
func CompileWasm(path string, loader Loader, cfg Config) ([]byte, *diagnostics.CompileError, error) {
	art, compileErr, err := Compile(path, loader, cfg)
	if err != nil {
		return nil, nil, err
	}

	if compileErr != nil {
		return nil, compileErr, nil
	}

	out, wasmErr := wasm.Compile(art.Lir)
	if wasmErr != nil {
		return nil, nil, wasmErr
	}

	return out, nil, nil
}

// CompileLIR compiles path and serializes the resulting module in §6.5's
// binary format, grounding cmd/lumen-check's "dump-lir" subcommand.
func CompileLIR(path string, loader Loader, cfg Config) ([]byte, *diagnostics.CompileError, error) {
	art, compileErr, err := Compile(path, loader, cfg)
	if err != nil {
		return nil, nil, err
	}

	if compileErr != nil {
		return nil, compileErr, nil
	}

	out, marshalErr := art.Lir.MarshalBinary()
	if marshalErr != nil {
		return nil, nil, marshalErr
	}

	return out, nil, nil
}
