package resolver

import "github.com/lumen-lang/lumen/pkg/span"

// effectSet is a small string set, cheap enough to copy per nested grant
// scope without needing a persistent structure.
type effectSet map[string]bool

func newEffectSet(effects ...string) effectSet {
	s := effectSet{}
	for _, e := range effects {
		s[e] = true
	}

	return s
}

func (s effectSet) union(effects []string) effectSet {
	out := effectSet{}
	for e := range s {
		out[e] = true
	}

	for _, e := range effects {
		out[e] = true
	}

	return out
}

func hasString(list []string, name string) bool {
	for _, e := range list {
		if e == name {
			return true
		}
	}

	return false
}

// checkToolCallEffect verifies a direct tool invocation's implied effect
// (the tool's declared/alias name, §6.3: "only the schema's effects list
// affects the resolver") is both declared on the enclosing cell's effect
// row and covered by a grant currently in scope.
func (r *resolveCtx) checkToolCallEffect(toolName string, sp span.Span) {
	if !hasString(r.cell.Effects, toolName) {
		r.errs = append(r.errs, errUndeclaredEffect(toolName, r.cell.Name, sp))
		return
	}

	if !r.grants()[toolName] {
		r.errs = append(r.errs, errMissingEffectGrant(toolName, r.cell.Name, sp))
	}
}

// checkCellCallEffects verifies every effect the callee requires is
// covered by the caller's own effect row plus any grant in scope
// (§4.3's effect discipline: "B's effects ⊆ A's effects, or A has a grant
// block covering the missing effects"), and that a @deterministic caller
// never calls an effectful callee.
func (r *resolveCtx) checkCellCallEffects(calleeName string, calleeEffects []string, deterministic bool, sp span.Span) {
	if r.cell.Deterministic && len(calleeEffects) > 0 && !deterministic {
		r.errs = append(r.errs, errNondeterministicOp(r.cell.Name, calleeName, sp))
		return
	}

	allowed := r.grants().union(r.cell.Effects)

	for _, e := range calleeEffects {
		if !allowed[e] {
			r.errs = append(r.errs, errEffectContractViolation(r.cell.Name, calleeName, e, sp))
		}
	}
}
