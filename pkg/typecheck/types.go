// Package typecheck implements §4.4: bidirectional inference over a
// resolved module, enum exhaustiveness checking, mutability discipline, and
// must-use enforcement.
package typecheck

import "strings"

// Type is the checker's internal representation, a monomorphic rendering of
// ast.Type enriched with the structural facts (record fields, enum
// variants, cell signatures) inference needs.
type Type interface {
	String() string
}

// Prim is one of the scalar builtins.
type Prim struct{ Name string }

func (p Prim) String() string { return p.Name }

var (
	TInt    = Prim{"Int"}
	TFloat  = Prim{"Float"}
	TBool   = Prim{"Bool"}
	TString = Prim{"String"}
	TBytes  = Prim{"Bytes"}
)

// Null is the type of the `null` literal, and the member every `T | Null`
// union subsumes it into.
type Null struct{}

func (Null) String() string { return "Null" }

// Unknown is the checker's error-recovery sentinel: it subsumes, and is
// subsumed by, everything, so one unresolvable sub-expression does not
// cascade into unrelated error reports.
type Unknown struct{}

func (Unknown) String() string { return "?" }

// List is `List(Elem)`.
type List struct{ Elem Type }

func (l List) String() string { return "List(" + l.Elem.String() + ")" }

// Map is `Map(Key, Val)`.
type Map struct{ Key, Val Type }

func (m Map) String() string { return "Map(" + m.Key.String() + ", " + m.Val.String() + ")" }

// Result is `Result(Ok, Err)`.
type Result struct{ Ok, Err Type }

func (r Result) String() string { return "Result(" + r.Ok.String() + ", " + r.Err.String() + ")" }

// Union is a structural `A | B | ...`.
type Union struct{ Members []Type }

func (u Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}

	return strings.Join(parts, " | ")
}

// Record is a nominal product type; field types are looked up by name for
// FieldAccess and RecordLit checking, and Order keeps the field names in
// declaration order.
type Record struct {
	Name   string
	Fields map[string]Type
	Order  []string
}

func (r Record) String() string { return r.Name }

// Enum is a nominal sum type; Variants maps each variant name to its
// payload field types in declaration order, for match exhaustiveness.
type Enum struct {
	Name     string
	Variants map[string][]Type
}

func (e Enum) String() string { return e.Name }

// Cell is the signature of a callable: its own declared parameter types and
// return type, unrelated to the lowerer's LirCell.
type Cell struct {
	Name    string
	Params  []Type
	Returns Type
	MustUse bool
}

func (c Cell) String() string { return c.Name }

// equal reports structural/nominal equality, treating Unknown as equal to
// anything (it never itself causes a mismatch).
func equal(a, b Type) bool {
	if _, ok := a.(Unknown); ok {
		return true
	}

	if _, ok := b.(Unknown); ok {
		return true
	}

	switch x := a.(type) {
	case Prim:
		y, ok := b.(Prim)
		return ok && x.Name == y.Name
	case Null:
		_, ok := b.(Null)
		return ok
	case List:
		y, ok := b.(List)
		return ok && equal(x.Elem, y.Elem)
	case Map:
		y, ok := b.(Map)
		return ok && equal(x.Key, y.Key) && equal(x.Val, y.Val)
	case Result:
		y, ok := b.(Result)
		return ok && equal(x.Ok, y.Ok) && equal(x.Err, y.Err)
	case Union:
		y, ok := b.(Union)
		if !ok || len(x.Members) != len(y.Members) {
			return false
		}

		for i := range x.Members {
			if !equal(x.Members[i], y.Members[i]) {
				return false
			}
		}

		return true
	case Record:
		y, ok := b.(Record)
		return ok && x.Name == y.Name
	case Enum:
		y, ok := b.(Enum)
		return ok && x.Name == y.Name
	}

	return false
}

// unionHas reports whether u structurally contains member m.
func unionHas(u Union, m Type) bool {
	for _, cand := range u.Members {
		if equal(cand, m) {
			return true
		}
	}

	return false
}

// subsumes reports whether a value of type sub may be used where sup is
// expected (§4.4's subsumption rules): equal types always subsume; Int
// widens to Float; any T is a subtype of T | U; Null is a subtype of any
// T | Null union; list/map element types are invariant.
func subsumes(sub, sup Type) bool {
	if equal(sub, sup) {
		return true
	}

	if _, ok := sub.(Unknown); ok {
		return true
	}

	if _, ok := sup.(Unknown); ok {
		return true
	}

	if subP, ok := sub.(Prim); ok && subP.Name == "Int" {
		if supP, ok := sup.(Prim); ok && supP.Name == "Float" {
			return true
		}
	}

	if supUnion, ok := sup.(Union); ok {
		if _, isNull := sub.(Null); isNull && unionHas(supUnion, Null{}) {
			return true
		}

		for _, m := range supUnion.Members {
			if subsumes(sub, m) {
				return true
			}
		}
	}

	return false
}

// join computes the least-upper-bound display type of two branches of
// control flow (e.g. two match arms), falling back to a structural union
// when neither subsumes the other.
func join(a, b Type) Type {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	if subsumes(b, a) {
		return a
	}

	if subsumes(a, b) {
		return b
	}

	return Union{Members: []Type{a, b}}
}
