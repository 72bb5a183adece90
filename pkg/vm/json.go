package vm

import "github.com/segmentio/encoding/json"

// toolCallPayload is the JSON-in contract §6.3 gives tool providers: the
// bound method name plus its positional arguments, decoded from registers.
type toolCallPayload struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

func marshalCallArgs(method string, args []Value) ([]byte, error) {
	payload := toolCallPayload{Method: method, Args: make([]any, len(args))}
	for i, a := range args {
		payload.Args[i] = toJSONValue(a)
	}

	return json.Marshal(payload)
}

func toJSONValue(v Value) any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindList:
		out := make([]any, len(v.List))
		for i, e := range v.List {
			out[i] = toJSONValue(e)
		}

		return out
	case KindMap:
		out := make(map[string]any, len(v.Map))
		for k, e := range v.Map {
			out[k] = toJSONValue(e)
		}

		return out
	case KindRecord:
		out := make(map[string]any, len(v.Record.Fields))
		for k, e := range v.Record.Fields {
			out[k] = toJSONValue(e)
		}

		return out
	case KindUnion:
		return map[string]any{"tag": v.Union.Tag, "payload": toJSONValue(v.Union.Payload)}
	default:
		return nil
	}
}

func unmarshalResult(data []byte) (Value, *Error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Value{}, &Error{Kind: ToolError, Message: "malformed tool response: " + err.Error()}
	}

	return fromJSONValue(decoded), nil
}

func fromJSONValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case bool:
		return BoolVal(x)
	case float64:
		if x == float64(int64(x)) {
			return IntVal(int64(x))
		}

		return FloatVal(x)
	case string:
		return StringVal(x)
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = fromJSONValue(e)
		}

		return ListVal(items)
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			m[k] = fromJSONValue(e)
		}

		return MapVal(m)
	default:
		return Null()
	}
}
