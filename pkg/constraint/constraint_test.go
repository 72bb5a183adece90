package constraint

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

func TestVerifySatisfiableRangeOk(t *testing.T) {
	mod := mustResolve(t, "cell clamp(x: Int) -> Int\n  where x >= 0\n  where x < 100\n  return x\nend\n")
	errs := Check(mod)
	assert.Empty(t, errs)
}

func TestVerifyContradictoryRangeUNSAT(t *testing.T) {
	mod := mustResolve(t, "cell bad(x: Int) -> Int\n  where x > 10\n  where x < 5\n  return x\nend\n")
	errs := Check(mod)
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid", errs[0].Kind)
	assert.Equal(t, codeInvalid, errs[0].Code)
}

func TestVerifyVarComparisonPropagates(t *testing.T) {
	mod := mustResolve(t, "cell range_ok(lo: Int, hi: Int) -> Int\n  where lo <= hi\n  where lo >= 0\n  where hi < 10\n  return lo\nend\n")
	errs := Check(mod)
	assert.Empty(t, errs)
}

func TestVerifyVarComparisonContradiction(t *testing.T) {
	mod := mustResolve(t, "cell range_bad(lo: Int, hi: Int) -> Int\n  where lo < hi\n  where lo >= 10\n  where hi <= 5\n  return lo\nend\n")
	errs := Check(mod)
	require.Len(t, errs, 1)
	assert.Equal(t, codeInvalid, errs[0].Code)
}

func TestVerifyOrBranchSatisfiable(t *testing.T) {
	mod := mustResolve(t, "cell either(x: Int) -> Int\n  where x < 0 or x > 100\n  return x\nend\n")
	errs := Check(mod)
	assert.Empty(t, errs)
}

func TestVerifyNotPushesNegationToLeaves(t *testing.T) {
	mod := mustResolve(t, "cell notted(x: Int) -> Int\n  where not (x < 0)\n  where x < 0\n  return x\nend\n")
	errs := Check(mod)
	require.Len(t, errs, 1)
	assert.Equal(t, codeInvalid, errs[0].Code)
}

func TestVerifyUnverifiedClauseDoesNotError(t *testing.T) {
	mod := mustResolve(t, "cell compute(x: Int) -> Int\n  return x * 2\nend\n" +
		"cell odd(x: Int) -> Int\n  where x != compute(x)\n  return x\nend\n")
	res := Verify(mod.Cells["odd"])
	assert.False(t, res.UNSAT)
	assert.NotEmpty(t, res.Unverified)
}

func TestArithmeticLoweringAndSolve(t *testing.T) {
	mod := mustResolve(t, "cell shifted(x: Int) -> Int\n  where x + 1 < 5\n  where x >= 10\n  return x\nend\n")
	errs := Check(mod)
	require.Len(t, errs, 1)
	assert.Equal(t, codeInvalid, errs[0].Code)
}

func TestIntervalNarrowAndEmpty(t *testing.T) {
	iv := unbounded()
	iv = iv.narrow(">=", 5)
	iv = iv.narrow("<", 5)
	assert.True(t, iv.empty())
}

func TestNegateDoubleNegationElimination(t *testing.T) {
	c := IntComparison{Var: "x", Op: ">", Value: 0}
	assert.Equal(t, c, negate(Not{Clause: c}))
}
