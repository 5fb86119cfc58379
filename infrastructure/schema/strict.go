package schema

// Strict returns a copy of a JSON Schema with "additionalProperties": false
// added to every object-typed subschema that does not already set it.
// The input is not modified.
func Strict(s map[string]any) map[string]any {
	out, _ := strictValue(s).(map[string]any)
	return out
}

func strictValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t)+1)
		for k, child := range t {
			out[k] = strictValue(child)
		}
		if isObject(t) {
			if _, ok := out["additionalProperties"]; !ok {
				out["additionalProperties"] = false
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = strictValue(child)
		}
		return out
	default:
		return v
	}
}

func isObject(s map[string]any) bool {
	switch t := s["type"].(type) {
	case string:
		return t == "object"
	case []any:
		for _, v := range t {
			if v == "object" {
				return true
			}
		}
	}
	return false
}
