package vm

import "strconv"

// Kind tags the variant a Value holds (§4.10's register file stores these
// dynamically typed values; unlike lir.Constant there is no BigInt variant
// since the VM's Int is a native int64, matching §9's "no arbitrary
// precision at runtime" scope).
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindRecord
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindRecord:
		return "Record"
	case KindUnion:
		return "Union"
	default:
		return "?"
	}
}

// Record is a runtime record value: a nominal type name plus its field
// values by name (field order is not observable at runtime, matching
// GetField/SetField's by-name lookup).
type Record struct {
	TypeName string
	Fields   map[string]Value
}

// Union is a runtime tagged-union value: one variant tag plus a single
// payload value (§3's NewUnion packs the whole payload as one value,
// mirroring how a VariantPattern binds its fields back out via GetField).
type Union struct {
	Tag     string
	Payload Value
}

// Value is every register's dynamically typed contents. A plain struct
// rather than an interface keeps the register file one contiguous slice
// with no per-cell boxing/allocation for the common Null/Bool/Int/Float
// case, matching the VM's register-file-as-flat-vector design (§4.10).
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	List   []Value
	Map    map[string]Value
	Record *Record
	Union  *Union
}

func Null() Value                { return Value{Kind: KindNull} }
func BoolVal(b bool) Value       { return Value{Kind: KindBool, Bool: b} }
func IntVal(n int64) Value       { return Value{Kind: KindInt, Int: n} }
func FloatVal(f float64) Value   { return Value{Kind: KindFloat, Float: f} }
func StringVal(s string) Value   { return Value{Kind: KindString, Str: s} }
func ListVal(items []Value) Value { return Value{Kind: KindList, List: items} }
func MapVal(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

func RecordVal(typeName string, fields map[string]Value) Value {
	return Value{Kind: KindRecord, Record: &Record{TypeName: typeName, Fields: fields}}
}

func UnionVal(tag string, payload Value) Value {
	return Value{Kind: KindUnion, Union: &Union{Tag: tag, Payload: payload}}
}

// IsTruthy mirrors the reference VM's is_truthy: only Null and Bool(false)
// are falsy, every other value (including Int(0) and "") is truthy.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// AsString coerces v for string-producing contexts (Add's string-concat
// overload, map-key coercion, Intrinsic Hash's argument).
func (v Value) AsString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		if v.Bool {
			return "true"
		}

		return "false"
	case KindNull:
		return "null"
	default:
		return ""
	}
}

// Equal implements Eq's by-value comparison: equal kind and equal payload;
// a List/Map/Record/Union compares structurally, element by element.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}

	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindString:
		return v.Str == o.Str
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}

		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}

		return true
	case KindMap:
		if len(v.Map) != len(o.Map) {
			return false
		}

		for k, mv := range v.Map {
			ov, ok := o.Map[k]
			if !ok || !mv.Equal(ov) {
				return false
			}
		}

		return true
	case KindRecord:
		if v.Record.TypeName != o.Record.TypeName || len(v.Record.Fields) != len(o.Record.Fields) {
			return false
		}

		for k, fv := range v.Record.Fields {
			ov, ok := o.Record.Fields[k]
			if !ok || !fv.Equal(ov) {
				return false
			}
		}

		return true
	case KindUnion:
		return v.Union.Tag == o.Union.Tag && v.Union.Payload.Equal(o.Union.Payload)
	default:
		return false
	}
}
