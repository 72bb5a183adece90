// Package wasm compiles a lowered LIR module to a standalone WebAssembly
// binary: one exported function per cell, an all-i64 value representation,
// and a switch-loop trampoline for cells whose control flow isn't straight
// line. Non-numeric values (strings, records, tools, big integers) are
// outside this backend's scope: null, string and big-integer constants load
// as i64 0, and instructions that build or read records, lists, maps,
// unions or tool results trap with Unreachable.
package wasm

import (
	"fmt"

	"github.com/lumen-lang/lumen/pkg/lir"
)

var wasmMagic = [4]byte{0x00, 0x61, 0x73, 0x6D}
var wasmVersion = [4]byte{0x01, 0x00, 0x00, 0x00}

// Compile assembles a complete .wasm module from every cell in module. Cells
// are exported under their own names; the linear memory backing them is
// exported as "memory".
func Compile(module *lir.LirModule) ([]byte, error) {
	if len(module.Cells) == 0 {
		return nil, fmt.Errorf("wasm: module has no cells to compile")
	}

	sigs := make([]cellSig, len(module.Cells))
	names := make([]string, len(module.Cells))
	for i, cell := range module.Cells {
		sigs[i] = cellSig{
			paramCount: len(cell.Params),
			hasReturn:  cell.Returns != "",
		}
		names[i] = cell.Name
	}
	unique := dedupeSigs(sigs)

	bodies := make([][]byte, len(module.Cells))
	for i, cell := range module.Cells {
		body, err := emitCellBody(&module.Cells[i])
		if err != nil {
			return nil, fmt.Errorf("wasm: cell %q: %w", cell.Name, err)
		}
		bodies[i] = body
	}

	var out []byte
	out = append(out, wasmMagic[:]...)
	out = append(out, wasmVersion[:]...)

	out = appendSection(out, secType, buildTypeSection(unique))
	out = appendSection(out, secFunction, buildFunctionSection(sigs, unique))
	out = appendSection(out, secMemory, buildMemorySection())
	out = appendSection(out, secExport, buildExportSection(names))
	out = appendSection(out, secCode, buildCodeSection(bodies))

	return out, nil
}
