package ast

import "github.com/lumen-lang/lumen/pkg/span"

// Expr is the sum type over expression forms. Every variant carries its own
// span (§3's invariant).
type Expr interface {
	Node
	exprNode()
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Sp    span.Span
}

func (e *IntLit) Span() span.Span { return e.Sp }
func (*IntLit) exprNode()         {}

// BigIntLit is an integer literal too wide for an int64, carried as decimal
// text until the constant pool materialises it as a math/big.Int.
type BigIntLit struct {
	Text string
	Sp   span.Span
}

func (e *BigIntLit) Span() span.Span { return e.Sp }
func (*BigIntLit) exprNode()         {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value float64
	Sp    span.Span
}

func (e *FloatLit) Span() span.Span { return e.Sp }
func (*FloatLit) exprNode()         {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value bool
	Sp    span.Span
}

func (e *BoolLit) Span() span.Span { return e.Sp }
func (*BoolLit) exprNode()         {}

// NullLit is the literal `null`.
type NullLit struct {
	Sp span.Span
}

func (e *NullLit) Span() span.Span { return e.Sp }
func (*NullLit) exprNode()         {}

// StringLit is a string literal. Parts holds the interpolation segments when
// len(Parts) > 0: alternating string-literal and expression entries,
// equivalent to "prefix" + expr + "suffix" (§4.1).
type StringLit struct {
	Value string
	Parts []Expr
	Sp    span.Span
}

func (e *StringLit) Span() span.Span { return e.Sp }
func (*StringLit) exprNode()         {}

// BytesLit is a `b"..."` hex-encoded byte-string literal.
type BytesLit struct {
	Value []byte
	Sp    span.Span
}

func (e *BytesLit) Span() span.Span { return e.Sp }
func (*BytesLit) exprNode()         {}

// Ident is a bare identifier reference, resolved by pkg/resolver to exactly
// one declaration (§3's invariant).
type Ident struct {
	Name string
	Sp   span.Span
}

func (e *Ident) Span() span.Span { return e.Sp }
func (*Ident) exprNode()         {}

// Binary is a binary operator application.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
	Sp    span.Span
}

func (e *Binary) Span() span.Span { return e.Sp }
func (*Binary) exprNode()         {}

// Unary is a unary operator application (`-`, `not`).
type Unary struct {
	Op      string
	Operand Expr
	Sp      span.Span
}

func (e *Unary) Span() span.Span { return e.Sp }
func (*Unary) exprNode()         {}

// Call is a cell or method invocation, optionally with explicit type
// arguments for a generic cell (§4.4's monomorphisation).
type Call struct {
	Callee   Expr
	TypeArgs []Type
	Args     []Expr
	Sp       span.Span
}

func (e *Call) Span() span.Span { return e.Sp }
func (*Call) exprNode()         {}

// ToolCall invokes a method on a tool declared via UseTool, lowered to the
// ToolCall instruction and dispatched through pkg/toolprovider at runtime.
type ToolCall struct {
	Tool   string
	Method string
	Args   []Expr
	Sp     span.Span
}

func (e *ToolCall) Span() span.Span { return e.Sp }
func (*ToolCall) exprNode()         {}

// FieldAccess is `target.field`.
type FieldAccess struct {
	Target Expr
	Field  string
	Sp     span.Span
}

func (e *FieldAccess) Span() span.Span { return e.Sp }
func (*FieldAccess) exprNode()         {}

// IndexAccess is `target[index]`.
type IndexAccess struct {
	Target Expr
	Index  Expr
	Sp     span.Span
}

func (e *IndexAccess) Span() span.Span { return e.Sp }
func (*IndexAccess) exprNode()         {}

// ListLit is a `[a, b, c]` list literal.
type ListLit struct {
	Elems []Expr
	Sp    span.Span
}

func (e *ListLit) Span() span.Span { return e.Sp }
func (*ListLit) exprNode()         {}

// MapEntry is one key/value pair of a MapLit.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLit is a `{k: v, ...}` map literal.
type MapLit struct {
	Entries []MapEntry
	Sp      span.Span
}

func (e *MapLit) Span() span.Span { return e.Sp }
func (*MapLit) exprNode()         {}

// FieldInit is one `name: value` field initializer of a RecordLit.
type FieldInit struct {
	Name  string
	Value Expr
}

// RecordLit constructs a named record value.
type RecordLit struct {
	TypeName string
	Fields   []FieldInit
	Sp       span.Span
}

func (e *RecordLit) Span() span.Span { return e.Sp }
func (*RecordLit) exprNode()         {}

// UnionLit constructs a tagged union value (`Tag(payload...)` of a Union
// member).
type UnionLit struct {
	Tag     string
	Payload []Expr
	Sp      span.Span
}

func (e *UnionLit) Span() span.Span { return e.Sp }
func (*UnionLit) exprNode()         {}

// Pattern is the sum type over match-arm patterns.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything and binds nothing (`_`).
type WildcardPattern struct {
	Sp span.Span
}

func (p *WildcardPattern) Span() span.Span { return p.Sp }
func (*WildcardPattern) patternNode()      {}

// BindingPattern matches anything and binds it to Name.
type BindingPattern struct {
	Name string
	Sp   span.Span
}

func (p *BindingPattern) Span() span.Span { return p.Sp }
func (*BindingPattern) patternNode()      {}

// VariantPattern matches an enum variant (or union tag), binding each
// payload field to the corresponding name in Fields.
type VariantPattern struct {
	Variant string
	Fields  []string
	Sp      span.Span
}

func (p *VariantPattern) Span() span.Span { return p.Sp }
func (*VariantPattern) patternNode()      {}

// LiteralPattern matches a constant value.
type LiteralPattern struct {
	Value Expr
	Sp    span.Span
}

func (p *LiteralPattern) Span() span.Span { return p.Sp }
func (*LiteralPattern) patternNode()      {}

// MatchArm pairs a pattern with the expression or statement block it guards.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr
	Body    []Stmt
	Sp      span.Span
}

// MatchExpr is a `match` used in expression position; its arms' final
// statement must be an implicit-return expression statement.
type MatchExpr struct {
	Scrutinee Expr
	Arms      []MatchArm
	Sp        span.Span
}

func (e *MatchExpr) Span() span.Span { return e.Sp }
func (*MatchExpr) exprNode()         {}
