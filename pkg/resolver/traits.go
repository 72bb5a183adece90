package resolver

import "github.com/lumen-lang/lumen/pkg/ast"

// checkImpls verifies every Impl against its Trait: every trait method
// must have a matching impl method by name, arity, parameter types, and
// return type (§4.3's supplemented trait/impl contract).
func checkImpls(m *Module) []*Error {
	var errs []*Error

	seen := map[[2]string]*ast.Impl{} // (trait, type) -> first impl

	for _, impl := range m.Impls {
		key := [2]string{impl.TraitName, impl.TypeName}

		if prev, ok := seen[key]; ok {
			errs = append(errs, errDuplicate(impl.TraitName+" for "+impl.TypeName, prev.Sp, impl.Sp))
			continue
		}

		seen[key] = impl

		trait, ok := m.Traits[impl.TraitName]
		if !ok {
			errs = append(errs, errUndefinedTrait(impl.TraitName, impl.Sp, suggest(impl.TraitName, traitNames(m))))
			continue
		}

		byName := map[string]*ast.Cell{}
		for _, method := range impl.Methods {
			byName[method.Name] = method
		}

		var missing []string

		for _, want := range trait.Methods {
			got, ok := byName[want.Name]
			if !ok {
				missing = append(missing, want.Name)
				continue
			}

			if !signatureMatches(want, got) {
				errs = append(errs, errTraitSignatureMismatch(impl.TraitName, impl.TypeName, want.Name, got.Sp))
			}
		}

		if len(missing) > 0 {
			errs = append(errs, errTraitMissingMethods(impl.TraitName, impl.TypeName, missing, impl.Sp))
		}
	}

	return errs
}

func signatureMatches(want ast.TraitMethod, got *ast.Cell) bool {
	if len(want.Params) != len(got.Params) {
		return false
	}

	for i, p := range want.Params {
		if !sameTypeName(p.Type, got.Params[i].Type) {
			return false
		}
	}

	if want.Returns == nil && got.Returns == nil {
		return true
	}

	if want.Returns == nil || got.Returns == nil {
		return false
	}

	return sameTypeName(want.Returns, got.Returns)
}

func traitNames(m *Module) []string {
	names := make([]string, 0, len(m.Traits))
	for n := range m.Traits {
		names = append(names, n)
	}

	return names
}
