package convert

import (
	"encoding/json"
	"strings"
)

// InvalidObjectMarker replaces the literal "[object Object]" produced by a
// broken upstream serialization, so the breakage is visible in the output
// instead of silently propagated.
const InvalidObjectMarker = "FIX_ME_INVALID_OBJECT"

func cleanValue(v any) any {
	if s, ok := v.(string); ok && s == "[object Object]" {
		return InvalidObjectMarker
	}
	return v
}

// Flatten resolves nested value wrappers to a scalar. A map exposing a
// "value" field is unwrapped recursively; any other map is serialized to
// its canonical JSON form; strings are trimmed; nil becomes "".
func Flatten(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if inner, ok := t["value"]; ok {
			return Flatten(inner)
		}
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	case nil:
		return ""
	case string:
		return cleanValue(strings.TrimSpace(t))
	default:
		return cleanValue(v)
	}
}

// IsExpression reports whether v is expression syntax: a string whose
// trimmed form starts with '@' or '='.
func IsExpression(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "@") || strings.HasPrefix(s, "=")
}

// exprParam builds a pipeline-parameter reference expression.
func exprParam(name string) map[string]any {
	return map[string]any{
		"value": "@pipeline().parameters." + name,
		"type":  "Expression",
	}
}

// FormatStoredProcParam shapes a stored-procedure parameter value.
// Expressions are double-wrapped per the Fabric schema; literals are
// tagged String.
func FormatStoredProcParam(v any) map[string]any {
	raw := Flatten(v)
	if IsExpression(raw) {
		return map[string]any{
			"value": map[string]any{"value": raw, "type": "Expression"},
			"type":  "String",
		}
	}
	return map[string]any{"value": raw, "type": "String"}
}

// FormatNotebookParam shapes a notebook base parameter, inferring the
// target type tag from the flattened value's native kind.
func FormatNotebookParam(v any) map[string]any {
	raw := Flatten(v)
	inferred := "String"
	switch n := raw.(type) {
	case bool:
		inferred = "bool"
	case int, int32, int64:
		inferred = "int"
	case float64:
		if n == float64(int64(n)) {
			inferred = "int"
		}
	}
	return map[string]any{"value": raw, "type": inferred}
}

// FormatInvokeParam shapes an invoke-pipeline parameter: the flattened
// raw value, no wrapper.
func FormatInvokeParam(v any) any {
	return Flatten(v)
}

// FormatGenericValue shapes a general value, tagging it Expression or
// String based on the flattened content.
func FormatGenericValue(v any) map[string]any {
	raw := Flatten(v)
	kind := "String"
	if IsExpression(raw) {
		kind = "Expression"
	}
	return map[string]any{"value": raw, "type": kind}
}

// FormatValueWithType tags a raw value in place: already-tagged maps pass
// through (deep-copied), expression strings become Expression, everything
// else String. Unlike FormatGenericValue the value is not flattened.
func FormatValueWithType(v any) any {
	if m, ok := v.(map[string]any); ok {
		if _, tagged := m["type"]; tagged {
			return deepCopy(m)
		}
	}
	if IsExpression(v) {
		return map[string]any{"value": v, "type": "Expression"}
	}
	return map[string]any{"value": v, "type": "String"}
}
