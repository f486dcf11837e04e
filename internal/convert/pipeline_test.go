package convert

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertPipeline(t *testing.T) {
	c := New(DefaultConfig())

	doc := map[string]any{
		"name": "pl_ingest_sales",
		"properties": map[string]any{
			"parameters": map[string]any{
				"containerName": map[string]any{"type": "String"},
			},
			"variables": map[string]any{
				"ts": map[string]any{"type": "String", "defaultValue": "2024-01-01T00::00::00"},
				"n":  map[string]any{"type": "Integer", "defaultValue": float64(5)},
			},
			"activities": []any{
				map[string]any{"name": "Pause", "type": "Wait", "typeProperties": map[string]any{"waitTimeInSeconds": 1}},
			},
		},
	}

	out, summary := c.ConvertPipeline(doc, nil)

	assert.Equal(t, "pl_ingest_sales", out["name"])
	id, ok := out["objectId"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "objectId is a fresh uuid")

	props := out["properties"].(map[string]any)
	vars := props["variables"].(map[string]any)
	assert.Equal(t, "2024-01-01T00:00:00", vars["ts"].(map[string]any)["defaultValue"])
	assert.Equal(t, float64(5), vars["n"].(map[string]any)["defaultValue"])

	acts := props["activities"].([]any)
	require.Len(t, acts, 1)
	assert.Equal(t, "Wait", acts[0].(map[string]any)["type"])

	assert.Equal(t, []string{"root.Pause(Wait)"}, summary.ConvertedPaths)
	assert.Equal(t, 1, summary.ActivityCounts.Input["Wait"])
}

func TestConvertPipelineSourceUntouched(t *testing.T) {
	c := New(DefaultConfig())

	inner := map[string]any{"name": "Run", "type": "ExecutePipeline", "typeProperties": map[string]any{}}
	doc := map[string]any{
		"name": "pl",
		"properties": map[string]any{
			"activities": []any{inner},
		},
	}

	_, _ = c.ConvertPipeline(doc, nil)
	assert.Equal(t, "ExecutePipeline", inner["type"], "source document stays unmodified")
}

func TestConvertPipelineEmptyDocument(t *testing.T) {
	c := New(DefaultConfig())

	out, summary := c.ConvertPipeline(map[string]any{}, nil)

	assert.Equal(t, "ConvertedPipeline", out["name"])
	props := out["properties"].(map[string]any)
	assert.Equal(t, []any{}, props["activities"])
	assert.Empty(t, summary.ConvertedPaths)
}

func TestConvertPipelineFreshSummaryPerRun(t *testing.T) {
	c := New(DefaultConfig())

	doc := map[string]any{
		"name": "pl",
		"properties": map[string]any{
			"activities": []any{
				map[string]any{"name": "W", "type": "Wait", "typeProperties": map[string]any{}},
			},
		},
	}

	_, first := c.ConvertPipeline(doc, nil)
	_, second := c.ConvertPipeline(doc, nil)
	assert.Len(t, first.Mappings, 1)
	assert.Len(t, second.Mappings, 1)
}

func TestConvertPipelineAuditTrail(t *testing.T) {
	c := New(DefaultConfig())

	var buf bytes.Buffer
	audit := NewAuditLog(&buf)

	doc := map[string]any{
		"name": "pl",
		"properties": map[string]any{
			"activities": []any{
				map[string]any{"name": "W", "type": "Wait", "typeProperties": map[string]any{}},
			},
		},
	}
	_, _ = c.ConvertPipeline(doc, audit)

	logged := buf.String()
	assert.Contains(t, logged, "PRE [root.W(Wait)]")
	assert.Contains(t, logged, "MAPPED [root.W(Wait)]")
	assert.Contains(t, logged, "POST [root.W(Wait)]")
	assert.Contains(t, logged, "=== SUMMARY ===")
}
