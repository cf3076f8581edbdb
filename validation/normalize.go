package validation

import "encoding/json"

// Normalize converts a caller-supplied argument value of ambiguous shape
// into a canonical ordered token vector.
//
// Transports hand us the raw decoded value, which may be a []string, a
// []interface{} produced by encoding/json, or a single string that is
// itself a JSON-encoded array of strings (some clients double-encode the
// array). Everything downstream of this function only ever sees a typed
// []string; validation logic never branches on input shape.
func Normalize(args interface{}) ([]string, error) {
	switch v := args.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []interface{}:
		return fromInterfaceSlice(v)
	case string:
		return fromJSONString(v)
	case json.RawMessage:
		return fromRawMessage(v)
	default:
		return nil, reject(CodeInvalidInput, "args must be an array of strings, got %T", args)
	}
}

func fromInterfaceSlice(items []interface{}) ([]string, error) {
	tokens := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, reject(CodeInvalidInput, "args[%d] must be a string, got %T", i, item)
		}
		tokens = append(tokens, s)
	}
	return tokens, nil
}

func fromJSONString(s string) ([]string, error) {
	var decoded interface{}
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, reject(CodeInvalidInput, "invalid JSON in args string: %v", err)
	}
	items, ok := decoded.([]interface{})
	if !ok {
		return nil, reject(CodeInvalidInput, "args string must encode an array, got %T", decoded)
	}
	return fromInterfaceSlice(items)
}

func fromRawMessage(raw json.RawMessage) ([]string, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, reject(CodeInvalidInput, "invalid JSON in args: %v", err)
	}
	// A JSON string may itself wrap a JSON-encoded array.
	if s, ok := decoded.(string); ok {
		return fromJSONString(s)
	}
	items, ok := decoded.([]interface{})
	if !ok {
		return nil, reject(CodeInvalidInput, "args must be an array of strings, got %T", decoded)
	}
	return fromInterfaceSlice(items)
}
