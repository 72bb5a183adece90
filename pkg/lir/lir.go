// Package lir is the compiled bytecode container §3 calls the LIR Module: a
// serializable tree of cells, types, and declarative metadata that the
// lowerer produces and the VM/WASM backends consume.
package lir

// OpCode is the instruction's leading 8-bit tag (§3's ~40-opcode set).
type OpCode uint8

const (
	OpLoadK OpCode = iota
	OpLoadInt
	OpLoadBool
	OpLoadNil
	OpMove

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpFloorDiv

	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr

	OpEq
	OpLt
	OpLe

	OpAnd
	OpOr
	OpNot

	OpJmp
	OpTest
	OpForPrep
	OpForLoop
	OpForIn
	OpLoop
	OpBreak
	OpContinue

	OpCall
	OpTailCall
	OpReturn
	OpHalt

	OpNewList
	OpNewMap
	OpNewRecord
	OpNewUnion
	OpGetField
	OpSetField
	OpGetIndex
	OpSetIndex

	OpIntrinsic
	OpToolCall
	OpSchema
	OpHandlePush

	OpNop
)

var opNames = map[OpCode]string{
	OpLoadK: "LoadK", OpLoadInt: "LoadInt", OpLoadBool: "LoadBool", OpLoadNil: "LoadNil", OpMove: "Move",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod", OpNeg: "Neg", OpFloorDiv: "FloorDiv",
	OpBitAnd: "BitAnd", OpBitOr: "BitOr", OpBitXor: "BitXor", OpShl: "Shl", OpShr: "Shr",
	OpEq: "Eq", OpLt: "Lt", OpLe: "Le",
	OpAnd: "And", OpOr: "Or", OpNot: "Not",
	OpJmp: "Jmp", OpTest: "Test", OpForPrep: "ForPrep", OpForLoop: "ForLoop", OpForIn: "ForIn",
	OpLoop: "Loop", OpBreak: "Break", OpContinue: "Continue",
	OpCall: "Call", OpTailCall: "TailCall", OpReturn: "Return", OpHalt: "Halt",
	OpNewList: "NewList", OpNewMap: "NewMap", OpNewRecord: "NewRecord", OpNewUnion: "NewUnion",
	OpGetField: "GetField", OpSetField: "SetField", OpGetIndex: "GetIndex", OpSetIndex: "SetIndex",
	OpIntrinsic: "Intrinsic", OpToolCall: "ToolCall", OpSchema: "Schema", OpHandlePush: "HandlePush",
	OpNop: "Nop",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}

	return "Unknown"
}

// jumpOps use sAx encoding relative to the instruction following them
// (§3's jump encoding invariant). forOps use sBx in the Bx field instead.
var jumpOps = map[OpCode]bool{
	OpJmp: true, OpBreak: true, OpContinue: true, OpHandlePush: true,
}

var forOps = map[OpCode]bool{
	OpForPrep: true, OpForLoop: true,
}

// IsJump reports whether op carries an sAx relative offset.
func (op OpCode) IsJump() bool { return jumpOps[op] }

// IsForJump reports whether op carries an sBx relative offset in Bx.
func (op OpCode) IsForJump() bool { return forOps[op] }

// IntrinsicID is the numeric argument dispatched by Intrinsic's B field.
type IntrinsicID uint8

const (
	IntrinsicLength IntrinsicID = iota
	IntrinsicCount
	IntrinsicMatches
	IntrinsicHash
)

// ConstKind tags the variant held by a Constant.
type ConstKind uint8

const (
	ConstNull ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstString
	ConstBigInt
)

// Constant is one entry of a cell's constant pool (§3). Exactly one of the
// typed fields is meaningful, selected by Kind; BigInt constants carry their
// decimal text rather than *big.Int so the type stays gob-friendly without a
// custom GobEncode/GobDecode pair.
type Constant struct {
	Kind      ConstKind
	BoolVal   bool
	IntVal    int64
	FloatVal  float64
	StringVal string
	BigIntDec string
}

// LirType describes one record or enum type for runtime field/variant
// lookups; the Go-level type system lives in pkg/typecheck and does not
// survive lowering.
type LirType struct {
	Kind     string // "record" or "enum"
	Name     string
	Fields   []LirField
	Variants []LirVariant
}

// LirField is one record field or enum-variant payload field.
type LirField struct {
	Name string
	Type string
}

// LirVariant is one enum case, with an optional payload type list joined as
// a formatted type string (parallel to the Rust lowerer's format_type_expr).
type LirVariant struct {
	Name    string
	Payload string
}

// LirParam is one cell parameter, naming the register it is bound to at
// call entry.
type LirParam struct {
	Name     string
	Type     string
	Register uint8
}

// LirCell is the compiled form of one ast.Cell: a flat instruction stream
// plus the metadata the VM needs to set up a call frame.
type LirCell struct {
	Name      string
	Params    []LirParam
	Returns   string
	Registers int
	Effects   []string
	Linear    bool
	Constants []Constant
	Instrs    []Instruction
}

// LirTool mirrors one UseTool declaration.
type LirTool struct {
	Alias  string
	ToolID string
}

// ToolCallSite is one lowered ToolCall expression's out-of-line metadata:
// ABx's 16-bit index can't fit a tool name, method name, and argument count
// alongside a destination register in one word, so each call site is
// interned here once and referenced by index (§4.9/§6.3's ToolCall
// delegation to the injected provider).
type ToolCallSite struct {
	Tool   string
	Method string
	Args   int
}

// LirPolicy mirrors one Grant declaration's default effect row.
type LirPolicy struct {
	Effects []string
}

// LirState is one state of a compiled StateMachine.
type LirState struct {
	Name     string
	Initial  bool
	Terminal bool
}

// LirTransition is one legal move between two states.
type LirTransition struct {
	Name string
	From string
	To   string
}

// LirMachine mirrors one StateMachine declaration (§4.3's supplemented
// machine verification, carried through to runtime metadata).
type LirMachine struct {
	Name        string
	States      []LirState
	Transitions []LirTransition
}

// LirHandler mirrors one Handler declaration: a named effect-handler body,
// itself lowered to its own instruction stream and pushed via HandlePush.
type LirHandler struct {
	Name      string
	Effect    string
	Registers int
	Constants []Constant
	Instrs    []Instruction
}

// LirModule is the serializable container described by §3: everything the
// VM or WASM backend needs to execute a compiled document, with no
// remaining reference to the source AST.
type LirModule struct {
	Version  string
	DocHash  string
	Strings  []string
	// FieldNames is a second, bounded (<=255 entries) intern table used only
	// by GetField/SetField's 8-bit field-index operand (ABC format has no
	// room for a 16-bit index alongside a destination and object register).
	// Overflowing it is a Lower error rather than the silent u16->u8
	// truncation the reference lowerer performs.
	FieldNames []string
	Types    []LirType
	Cells    []LirCell
	Tools    []LirTool
	Policies []LirPolicy
	Machines []LirMachine
	Handlers []LirHandler
	ToolSite []ToolCallSite
}

// NewModule constructs an empty module stamped with the given content hash.
func NewModule(docHash string) *LirModule {
	return &LirModule{Version: moduleVersion, DocHash: docHash}
}

const moduleVersion = "1.0.0"
