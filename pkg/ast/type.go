package ast

import "github.com/lumen-lang/lumen/pkg/span"

// Type is the sum type over §3's structural type representation: Named,
// List(T), Map(K,V), Result(Ok,Err), Union([T]), Null.
type Type interface {
	Node
	typeNode()
}

// NamedType is a nominal type reference, optionally generic
// (Args is non-empty for e.g. `Box<Int>`).
type NamedType struct {
	Name string
	Args []Type
	Sp   span.Span
}

func (t *NamedType) Span() span.Span { return t.Sp }
func (*NamedType) typeNode()         {}

// ListType is `List(T)`.
type ListType struct {
	Elem Type
	Sp   span.Span
}

func (t *ListType) Span() span.Span { return t.Sp }
func (*ListType) typeNode()         {}

// MapType is `Map(K, V)`.
type MapType struct {
	Key Type
	Val Type
	Sp  span.Span
}

func (t *MapType) Span() span.Span { return t.Sp }
func (*MapType) typeNode()         {}

// ResultType is `Result(Ok, Err)`.
type ResultType struct {
	Ok  Type
	Err Type
	Sp  span.Span
}

func (t *ResultType) Span() span.Span { return t.Sp }
func (*ResultType) typeNode()         {}

// UnionType is `T | U | ...`.
type UnionType struct {
	Members []Type
	Sp      span.Span
}

func (t *UnionType) Span() span.Span { return t.Sp }
func (*UnionType) typeNode()         {}

// NullType is the literal `Null` type, used both standalone and as a member
// of a UnionType (§4.4's `Null` subtype of any `T | Null` rule).
type NullType struct {
	Sp span.Span
}

func (t *NullType) Span() span.Span { return t.Sp }
func (*NullType) typeNode()         {}
