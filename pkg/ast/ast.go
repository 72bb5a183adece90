// Package ast defines the Lumen abstract syntax tree: a tree of tagged
// variants over Item (top-level declarations), Type (structural type
// expressions), Expr and Stmt, every node carrying its own Span.
package ast

import "github.com/lumen-lang/lumen/pkg/span"

// Node is implemented by every AST element so that diagnostics and the
// lowerer can always recover a source location.
type Node interface {
	Span() span.Span
}

// Program is the root of one compiled document: the concatenated top-level
// items from every `lumen`/`lm` fence, in source order.
type Program struct {
	Items []Item
}

// Item is the sum type over top-level declarations (§3: Cell, Record, Enum,
// UseTool, Grant, Trait, Impl), supplemented with StateMachine and Handler.
type Item interface {
	Node
	itemNode()
}

// Param is a single cell or method parameter.
type Param struct {
	Name string
	Type Type
	Sp   span.Span
}

// Field is a single record field.
type Field struct {
	Name string
	Type Type
	Sp   span.Span
}

// Cell is a top-level function declaration: the unit the lowerer compiles
// one-for-one into a LirCell.
type Cell struct {
	Name          string
	TypeParams    []string
	Params        []Param
	Returns       Type
	Effects       []string
	MustUse       bool
	Deterministic bool
	Linear        bool
	Where         []Expr
	Body          []Stmt
	Sp            span.Span
}

func (c *Cell) Span() span.Span { return c.Sp }
func (*Cell) itemNode()         {}

// Import declares that the document depends on the top-level symbols of
// another Lumen module, found by resolving Path through the import
// resolver's extension search order (§4.3). Names optionally restricts the
// import to a named subset ("wildcard" when empty), and Alias optionally
// qualifies the imported names under a local prefix.
type Import struct {
	Path  string
	Names []string
	Alias string
	Sp    span.Span
}

func (im *Import) Span() span.Span { return im.Sp }
func (*Import) itemNode()          {}

// Record is a nominal product type declaration.
type Record struct {
	Name   string
	Fields []Field
	Sp     span.Span
}

func (r *Record) Span() span.Span { return r.Sp }
func (*Record) itemNode()         {}

// EnumVariant is one case of an Enum, with zero or more payload fields.
type EnumVariant struct {
	Name   string
	Fields []Field
	Sp     span.Span
}

// Enum is a nominal sum type declaration.
type Enum struct {
	Name     string
	Variants []EnumVariant
	Sp       span.Span
}

func (e *Enum) Span() span.Span { return e.Sp }
func (*Enum) itemNode()         {}

// UseTool declares that the document depends on an external tool provider
// by name, optionally under a local alias.
type UseTool struct {
	Name  string
	Alias string
	Sp    span.Span
}

func (u *UseTool) Span() span.Span { return u.Sp }
func (*UseTool) itemNode()         {}

// Grant is a top-level default effect grant, covering every cell in the
// document for the named effects (§4.3's effect discipline).
type Grant struct {
	Effects []string
	Sp      span.Span
}

func (g *Grant) Span() span.Span { return g.Sp }
func (*Grant) itemNode()         {}

// TraitMethod is one method signature declared by a Trait.
type TraitMethod struct {
	Name    string
	Params  []Param
	Returns Type
	Sp      span.Span
}

// Trait declares a named set of method signatures that an Impl must satisfy.
type Trait struct {
	Name    string
	Methods []TraitMethod
	Sp      span.Span
}

func (t *Trait) Span() span.Span { return t.Sp }
func (*Trait) itemNode()         {}

// Impl implements a Trait for a concrete Type with a set of Cells.
type Impl struct {
	TraitName string
	TypeName  string
	Methods   []*Cell
	Sp        span.Span
}

func (i *Impl) Span() span.Span { return i.Sp }
func (*Impl) itemNode()         {}

// StateDecl is one state of a StateMachine declaration.
type StateDecl struct {
	Name     string
	Params   []Param
	Initial  bool
	Terminal bool
	Sp       span.Span
}

// TransitionDecl declares a legal move between two states of a StateMachine.
type TransitionDecl struct {
	Name string
	From string
	To   string
	Args []Param
	Sp   span.Span
}

// StateMachine is a supplemented top-level item (grounded in original_source,
// see DESIGN.md) consumed by the resolver's machine verification (§4.3).
type StateMachine struct {
	Name        string
	States      []StateDecl
	Transitions []TransitionDecl
	Sp          span.Span
}

func (m *StateMachine) Span() span.Span { return m.Sp }
func (*StateMachine) itemNode()         {}

// Handler is a supplemented top-level item: a named effect-handler block
// lowered to a HandlePush instruction (§3's opcode set).
type Handler struct {
	Name   string
	Effect string
	Body   []Stmt
	Sp     span.Span
}

func (h *Handler) Span() span.Span { return h.Sp }
func (*Handler) itemNode()         {}
