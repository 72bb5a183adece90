package ownership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/parser"
	"github.com/lumen-lang/lumen/pkg/resolver"
)

func mustResolve(t *testing.T, src string) *resolver.Module {
	t.Helper()

	toks, lexErr := lexer.New(src, 1, 1).Tokenize()
	require.Nil(t, lexErr)

	prog, parseErrs := parser.Parse(toks)
	require.Empty(t, parseErrs)

	res := resolver.Resolve("test", prog)
	require.Empty(t, res.Errors)

	return res.Module
}

func kinds(errs []*Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}

	return out
}

func TestConsumedLinearValueOk(t *testing.T) {
	src := "@linear\ncell acquire() -> Int\n  return 1\nend\n" +
		"cell sink(x: Int) -> Int\n  return x\nend\n" +
		"cell main() -> Int\n  let handle = acquire()\n  return sink(handle)\nend\n"
	errs := Check(mustResolve(t, src))
	assert.Empty(t, errs)
}

func TestNotConsumedWhenDropped(t *testing.T) {
	src := "@linear\ncell acquire() -> Int\n  return 1\nend\n" +
		"cell main() -> Int\n  let handle = acquire()\n  return 0\nend\n"
	errs := Check(mustResolve(t, src))
	assert.Contains(t, kinds(errs), "NotConsumed")
}

func TestUseAfterMove(t *testing.T) {
	src := "@linear\ncell acquire() -> Int\n  return 1\nend\n" +
		"cell sink(x: Int) -> Int\n  return x\nend\n" +
		"cell main() -> Int\n  let handle = acquire()\n  sink(handle)\n  return sink(handle)\nend\n"
	errs := Check(mustResolve(t, src))
	assert.Contains(t, kinds(errs), "UseAfterMove")
}

func TestMoveIntoNewBindingThenConsumeOk(t *testing.T) {
	src := "@linear\ncell acquire() -> Int\n  return 1\nend\n" +
		"cell sink(x: Int) -> Int\n  return x\nend\n" +
		"cell main() -> Int\n  let handle = acquire()\n  let moved = handle\n  return sink(moved)\nend\n"
	errs := Check(mustResolve(t, src))
	assert.Empty(t, errs)
}

func TestFieldBorrowDoesNotConsume(t *testing.T) {
	src := "record Box\n  n: Int\nend\n" +
		"@linear\ncell acquire() -> Box\n  return Box{n: 1}\nend\n" +
		"cell sink(x: Box) -> Int\n  return x.n\nend\n" +
		"cell main() -> Int\n  let handle = acquire()\n  let peek = handle.n\n  return sink(handle)\nend\n"
	errs := Check(mustResolve(t, src))
	assert.Empty(t, errs)
}

func TestMoveWhileBorrowedInSameStatement(t *testing.T) {
	src := "record Box\n  n: Int\nend\n" +
		"@linear\ncell acquire() -> Box\n  return Box{n: 1}\nend\n" +
		"cell combine(a: Int, b: Box) -> Int\n  return a\nend\n" +
		"cell main() -> Int\n  let handle = acquire()\n  return combine(handle.n, handle)\nend\n"
	errs := Check(mustResolve(t, src))
	assert.Contains(t, kinds(errs), "MoveWhileBorrowed")
}

func TestNotConsumedInsideIfBranch(t *testing.T) {
	src := "@linear\ncell acquire() -> Int\n  return 1\nend\n" +
		"cell main(flag: Bool) -> Int\n  if flag\n    let handle = acquire()\n  end\n  return 0\nend\n"
	errs := Check(mustResolve(t, src))
	assert.Contains(t, kinds(errs), "NotConsumed")
}

func TestNonLinearCellsAreUntracked(t *testing.T) {
	src := "cell plain() -> Int\n  return 1\nend\n" +
		"cell main() -> Int\n  let x = plain()\n  let y = x\n  return y\nend\n"
	errs := Check(mustResolve(t, src))
	assert.Empty(t, errs)
}
