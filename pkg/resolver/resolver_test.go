package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-lang/lumen/pkg/lexer"
	"github.com/lumen-lang/lumen/pkg/parser"
)

func mustParse(t *testing.T, src string) *Result {
	t.Helper()

	toks, lexErr := lexer.New(src, 1, 1).Tokenize()
	require.Nil(t, lexErr)

	prog, parseErrs := parser.Parse(toks)
	require.Empty(t, parseErrs)

	return Resolve("test", prog)
}

func errKinds(res *Result) []string {
	kinds := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		kinds[i] = e.Kind
	}

	return kinds
}

func TestResolveSimpleCellHasNoErrors(t *testing.T) {
	res := mustParse(t, "cell add(a: Int, b: Int) -> Int\n  return a + b\nend\n")
	assert.Empty(t, res.Errors)
}

func TestResolveDuplicateCellNames(t *testing.T) {
	src := "cell foo() -> Int\n  return 1\nend\ncell foo() -> Int\n  return 2\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "Duplicate")
}

func TestResolveUndefinedCellCall(t *testing.T) {
	src := "cell main() -> Int\n  return helpr()\nend\n"
	res := mustParse(t, src)
	require.Contains(t, errKinds(res), "UndefinedCell")
}

func TestResolveUndefinedCellSuggestsClosestName(t *testing.T) {
	src := "cell helper() -> Int\n  return 1\nend\ncell main() -> Int\n  return helpr()\nend\n"
	res := mustParse(t, src)

	for _, e := range res.Errors {
		if e.Kind == "UndefinedCell" {
			assert.Contains(t, e.Suggestions, "helper")
		}
	}
}

func TestResolveUndefinedType(t *testing.T) {
	src := "cell main(x: Gizmo) -> Int\n  return 1\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "UndefinedType")
}

func TestResolveEffectContractViolation(t *testing.T) {
	src := "cell fetch() -> Int / {http}\n  return 1\nend\ncell main() -> Int\n  return fetch()\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "EffectContractViolation")
}

func TestResolveEffectGrantedThroughDeclaredEffectRow(t *testing.T) {
	src := "cell fetch() -> Int / {http}\n  return 1\nend\ncell main() -> Int / {http}\n  return fetch()\nend\n"
	res := mustParse(t, src)
	assert.NotContains(t, errKinds(res), "EffectContractViolation")
}

func TestResolveEffectGrantedThroughGrantStmt(t *testing.T) {
	src := "cell fetch() -> Int / {http}\n  return 1\nend\n" +
		"cell main() -> Int\n  grant {http}\n    return fetch()\n  end\nend\n"
	res := mustParse(t, src)
	assert.NotContains(t, errKinds(res), "EffectContractViolation")
}

func TestResolveDeterministicCellCannotCallEffectfulCell(t *testing.T) {
	src := "cell fetch() -> Int / {http}\n  return 1\nend\n" +
		"@deterministic\ncell main() -> Int\n  return fetch()\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "NondeterministicOperation")
}

func TestResolveUndeclaredToolEffect(t *testing.T) {
	src := "use tool http\ncell main() -> Int\n  return http::get()\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "UndeclaredEffect")
}

func TestResolveUndefinedTool(t *testing.T) {
	src := "cell main() -> Int\n  return http::get()\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "UndefinedTool")
}

func TestResolveStateMachineUnreachableState(t *testing.T) {
	src := "machine Door\n  state initial Closed\n  state terminal Open\n  state Orphan\n" +
		"  transition open from Closed to Open\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "MachineUnreachableState")
}

func TestResolveStateMachineMissingTerminal(t *testing.T) {
	src := "machine Door\n  state initial Closed\n  state Open\n" +
		"  transition open from Closed to Open\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "MachineMissingTerminal")
}

func TestResolveStateMachineUnknownTransitionTarget(t *testing.T) {
	src := "machine Door\n  state initial Closed\n  state terminal Open\n" +
		"  transition open from Closed to Vanished\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "MachineUnknownTransition")
}

func TestResolveTraitImplMissingMethod(t *testing.T) {
	src := "trait Greeter\n  cell greet() -> Int\nend\n" +
		"record Person\n  name: Int\nend\n" +
		"impl Greeter for Person\nend\n"
	res := mustParse(t, src)
	assert.Contains(t, errKinds(res), "TraitMissingMethods")
}

func TestResolveTraitImplComplete(t *testing.T) {
	src := "trait Greeter\n  cell greet() -> Int\nend\n" +
		"record Person\n  name: Int\nend\n" +
		"impl Greeter for Person\n  cell greet() -> Int\n    return 1\n  end\nend\n"
	res := mustParse(t, src)
	assert.NotContains(t, errKinds(res), "TraitMissingMethods")
}

func TestLevenshteinBasic(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 1, levenshtein("abc", "abd"))
	assert.Equal(t, 1, levenshtein("abc", "ab"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}
