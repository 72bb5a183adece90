package resolver

import "github.com/lumen-lang/lumen/pkg/ast"

// checkMachine validates one StateMachine declaration per §4.3: the
// initial state must exist, every transition target must exist, every
// state must be reachable from the initial state, and at least one state
// must be terminal.
func checkMachine(m *ast.StateMachine) []*Error {
	var errs []*Error

	states := map[string]ast.StateDecl{}
	for _, s := range m.States {
		states[s.Name] = s
	}

	var initial string
	hasTerminal := false

	for _, s := range m.States {
		if s.Initial {
			initial = s.Name
		}

		if s.Terminal {
			hasTerminal = true
		}
	}

	if initial == "" {
		errs = append(errs, errMachineUnknownInitial(m.Name, "<none>", m.Sp))
	} else if _, ok := states[initial]; !ok {
		errs = append(errs, errMachineUnknownInitial(m.Name, initial, m.Sp))
	}

	if !hasTerminal {
		errs = append(errs, errMachineMissingTerminal(m.Name, m.Sp))
	}

	adjacency := map[string][]ast.TransitionDecl{}

	for _, t := range m.Transitions {
		adjacency[t.From] = append(adjacency[t.From], t)

		if _, ok := states[t.To]; !ok {
			errs = append(errs, errMachineUnknownTarget(m.Name, t.Name, t.To, t.Sp))
		}

		if target, ok := states[t.To]; ok {
			if len(t.Args) != len(target.Params) {
				errs = append(errs, errMachineArgCount(m.Name, t.Name, len(target.Params), len(t.Args), t.Sp))
			} else {
				for i, param := range target.Params {
					if !sameTypeName(param.Type, t.Args[i].Type) {
						errs = append(errs, errMachineArgType(m.Name, t.Name, param.Name, t.Args[i].Sp))
					}
				}
			}
		}
	}

	if initial != "" {
		reached := map[string]bool{initial: true}
		queue := []string{initial}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			for _, t := range adjacency[cur] {
				if !reached[t.To] {
					reached[t.To] = true
					queue = append(queue, t.To)
				}
			}
		}

		for _, s := range m.States {
			if !reached[s.Name] {
				errs = append(errs, errMachineUnreachable(m.Name, s.Name, s.Sp))
			}
		}
	}

	return errs
}

// sameTypeName compares two type expressions by their surface name only;
// the resolver does not have full structural unification (that is
// typecheck's job), but transition argument/param type names should at
// least match textually.
func sameTypeName(a, b ast.Type) bool {
	na, oka := a.(*ast.NamedType)
	nb, okb := b.(*ast.NamedType)

	if oka && okb {
		return na.Name == nb.Name
	}

	return true
}
