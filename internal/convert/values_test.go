package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	assert.Equal(t, "", Flatten(nil))
	assert.Equal(t, "hello", Flatten("  hello  "))
	assert.Equal(t, 42, Flatten(42))

	// Nested value wrappers unwrap recursively.
	wrapped := map[string]any{
		"value": map[string]any{"value": "@pipeline().parameters.x", "type": "Expression"},
		"type":  "Expression",
	}
	assert.Equal(t, "@pipeline().parameters.x", Flatten(wrapped))

	// Maps without a value field serialize to JSON.
	assert.Equal(t, `{"a":1}`, Flatten(map[string]any{"a": 1}))
}

func TestFlattenInvalidObjectMarker(t *testing.T) {
	assert.Equal(t, InvalidObjectMarker, Flatten("[object Object]"))
	assert.Equal(t, InvalidObjectMarker, Flatten(map[string]any{"value": "[object Object]"}))
}

func TestIsExpression(t *testing.T) {
	assert.True(t, IsExpression("@pipeline().parameters.container"))
	assert.True(t, IsExpression("  @item().name"))
	assert.True(t, IsExpression("=1+1"))
	assert.False(t, IsExpression("plain"))
	assert.False(t, IsExpression(42))
	assert.False(t, IsExpression(nil))
}

func TestFormatStoredProcParamExpression(t *testing.T) {
	got := FormatStoredProcParam("@pipeline().parameters.date")
	require.Equal(t, "String", got["type"])
	inner, ok := got["value"].(map[string]any)
	require.True(t, ok, "expression parameters are double-wrapped")
	assert.Equal(t, "@pipeline().parameters.date", inner["value"])
	assert.Equal(t, "Expression", inner["type"])
}

func TestFormatStoredProcParamLiteral(t *testing.T) {
	got := FormatStoredProcParam(map[string]any{"value": "2024-01-01", "type": "String"})
	assert.Equal(t, map[string]any{"value": "2024-01-01", "type": "String"}, got)
}

func TestFormatNotebookParam(t *testing.T) {
	assert.Equal(t, "bool", FormatNotebookParam(true)["type"])
	assert.Equal(t, "int", FormatNotebookParam(7)["type"])
	assert.Equal(t, "int", FormatNotebookParam(float64(7))["type"])
	assert.Equal(t, "String", FormatNotebookParam(7.5)["type"])
	assert.Equal(t, "String", FormatNotebookParam("abc")["type"])
}

func TestFormatGenericValue(t *testing.T) {
	expr := FormatGenericValue("@variables('v')")
	assert.Equal(t, "Expression", expr["type"])

	lit := FormatGenericValue("plain")
	assert.Equal(t, "String", lit["type"])
	assert.Equal(t, "plain", lit["value"])

	empty := FormatGenericValue(nil)
	assert.Equal(t, "String", empty["type"])
	assert.Equal(t, "", empty["value"])
}

func TestFormatValueWithType(t *testing.T) {
	// Already-tagged values pass through as an independent copy.
	tagged := map[string]any{"value": "@x", "type": "Expression"}
	got := FormatValueWithType(tagged).(map[string]any)
	assert.Equal(t, tagged, got)
	got["value"] = "mutated"
	assert.Equal(t, "@x", tagged["value"])

	expr := FormatValueWithType("@x").(map[string]any)
	assert.Equal(t, "Expression", expr["type"])

	// Untagged maps are treated as plain values, not flattened.
	plain := FormatValueWithType(map[string]any{"k": "v"}).(map[string]any)
	assert.Equal(t, "String", plain["type"])
	assert.Equal(t, map[string]any{"k": "v"}, plain["value"])
}
