package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/pkg/resolver"
	"github.com/lumen-lang/lumen/pkg/vm"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestCompileCleanCellProducesLIR(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.lm", "cell main() -> Int\n    return 2 + 3 * 4\nend\n")

	art, compileErr, err := Compile(path, resolver.FileLoader{}, Config{})
	require.NoError(t, err)
	assert.Nil(t, compileErr)
	require.NotNil(t, art.Lir)
	assert.NotEmpty(t, art.Lir.Cells)
}

func TestCompileLexErrorStopsBeforeResolve(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.lm", "cell main()\n\x00\nend\n")

	art, compileErr, err := Compile(path, resolver.FileLoader{}, Config{})
	require.NoError(t, err)
	require.NotNil(t, compileErr)
	assert.Equal(t, "E0001", compileErr.Code())
	assert.Nil(t, art.Module)
	assert.Nil(t, art.Lir)
}

func TestCompileParseErrorsStillRunResolve(t *testing.T) {
	dir := t.TempDir()
	// Unclosed parenthesis: a parse error, but the lexer and resolver both
	// still have something to work with.
	path := writeFile(t, dir, "main.lm", "cell main(\n    return 1\nend\n")

	art, compileErr, err := Compile(path, resolver.FileLoader{}, Config{})
	require.NoError(t, err)
	require.NotNil(t, compileErr)
	assert.NotNil(t, art.Module, "resolve should still run over the partial parse")
}

func TestCompileUndefinedCellProducesResolveError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.lm", "cell main() -> Int\n    return helper()\nend\n")

	_, compileErr, err := Compile(path, resolver.FileLoader{}, Config{})
	require.NoError(t, err)
	require.NotNil(t, compileErr)
	assert.Equal(t, "E0102", compileErr.Code(), "resolve is the first stage to contribute, so its code wins")
}

func TestCompileNotFoundIsInvocationError(t *testing.T) {
	dir := t.TempDir()

	_, compileErr, err := Compile(filepath.Join(dir, "missing.lm"), resolver.FileLoader{}, Config{})
	assert.Nil(t, compileErr)
	require.Error(t, err)

	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCheckFilesSummarizesPassAndFail(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.lm", "cell main() -> Int\n    return 1\nend\n")
	bad := writeFile(t, dir, "bad.lm", "cell main() -> Int\n    return nope()\nend\n")

	summary := CheckFiles([]string{good, bad}, resolver.FileLoader{}, Config{})

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Errors)
}

func TestCheckFilesReportsUnreadableFileWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.lm", "cell main() -> Int\n    return 1\nend\n")
	missing := filepath.Join(dir, "missing.lm")

	summary := CheckFiles([]string{good, missing}, resolver.FileLoader{}, Config{})

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
}

func TestRunExecutesCompiledCell(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.lm", "cell main() -> Int\n    return 2 + 3 * 4\nend\n")

	val, compileErr, vmErr, err := Run(path, resolver.FileLoader{}, Config{}, nil, "main", nil)
	require.NoError(t, err)
	assert.Nil(t, compileErr)
	require.Nil(t, vmErr)
	assert.Equal(t, vm.IntVal(14), val)
}

func TestRunOptimizedProducesSameResult(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.lm", "cell main() -> Int\n    let mut s = 0\n    let mut i = 0\n    while i < 5\n        s = s + i\n        i = i + 1\n    end\n    return s\nend\n")

	val, compileErr, vmErr, err := Run(path, resolver.FileLoader{}, Config{Optimize: true}, nil, "main", nil)
	require.NoError(t, err)
	assert.Nil(t, compileErr)
	require.Nil(t, vmErr)
	assert.Equal(t, vm.IntVal(10), val)
}

func TestCompileLIRRoundTripsThroughBinaryFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.lm", "cell main() -> Int\n    return 1\nend\n")

	data, compileErr, err := CompileLIR(path, resolver.FileLoader{}, Config{})
	require.NoError(t, err)
	assert.Nil(t, compileErr)
	require.NotEmpty(t, data)
}

func TestCompileWasmProducesModule(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.lm", "cell main() -> Int\n    return 1\nend\n")

	data, compileErr, err := CompileWasm(path, resolver.FileLoader{}, Config{})
	require.NoError(t, err)
	assert.Nil(t, compileErr)
	require.NotEmpty(t, data)
}
