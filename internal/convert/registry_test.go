package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandipan8609/fabric-migration-v1/internal/logging"
)

func newTestSession() *Session {
	return &Session{
		Config:  DefaultConfig(),
		Params:  map[string]any{},
		Summary: NewRecorder(),
		Logger:  logging.NewNop(),
	}
}

func TestConvertActivitiesNestedContainers(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	doc := []any{
		map[string]any{
			"name": "Check",
			"type": "IfCondition",
			"typeProperties": map[string]any{
				"ifTrueActivities": []any{
					map[string]any{
						"name": "Loop",
						"type": "ForEach",
						"typeProperties": map[string]any{
							"items": "@pipeline().parameters.files",
							"activities": []any{
								map[string]any{"name": "Run", "type": "ExecutePipeline", "typeProperties": map[string]any{}},
							},
						},
					},
				},
				"ifFalseActivities": []any{
					map[string]any{"name": "Pause", "type": "Wait", "typeProperties": map[string]any{"waitTimeInSeconds": 5}},
				},
			},
		},
	}

	out := c.ConvertActivities(s, doc, "root")
	require.Len(t, out, 1)

	cond := out[0].(map[string]any)
	assert.Equal(t, "IfCondition", cond["type"])

	tp := cond["typeProperties"].(map[string]any)
	loop := tp["ifTrueActivities"].([]any)[0].(map[string]any)
	assert.Equal(t, "ForEach", loop["type"])

	body := loop["typeProperties"].(map[string]any)["activities"].([]any)
	run := body[0].(map[string]any)
	assert.Equal(t, "InvokePipeline", run["type"])

	pause := tp["ifFalseActivities"].([]any)[0].(map[string]any)
	assert.Equal(t, "Wait", pause["type"])

	// Each node is recorded exactly once, under its full nested path.
	sum := s.Summary.Summary()
	assert.ElementsMatch(t, []string{
		"root.Check(IfCondition)",
		"root.Check(IfCondition).ifTrueActivities.Loop(ForEach)",
		"root.Check(IfCondition).ifTrueActivities.Loop(ForEach).activities.Run(ExecutePipeline)",
		"root.Check(IfCondition).ifFalseActivities.Pause(Wait)",
	}, sum.ConvertedPaths)
	assert.Equal(t, 1, sum.ActivityCounts.Input["ExecutePipeline"])
	assert.Equal(t, 1, sum.ActivityCounts.Output["InvokePipeline"])
}

func TestConvertActivitiesSwitchCases(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	doc := []any{
		map[string]any{
			"name": "Route",
			"type": "Switch",
			"typeProperties": map[string]any{
				"cases": []any{
					map[string]any{
						"value": "a",
						"activities": []any{
							map[string]any{"name": "A", "type": "SetVariable", "typeProperties": map[string]any{"variableName": "v", "value": "1"}},
						},
					},
				},
				"defaultActivities": []any{
					map[string]any{"name": "D", "type": "Wait", "typeProperties": map[string]any{}},
				},
			},
		},
	}

	out := c.ConvertActivities(s, doc, "root")
	tp := out[0].(map[string]any)["typeProperties"].(map[string]any)

	caseActs := tp["cases"].([]any)[0].(map[string]any)["activities"].([]any)
	assert.Equal(t, "SetVariable", caseActs[0].(map[string]any)["type"])

	paths := s.Summary.Summary().ConvertedPaths
	assert.Contains(t, paths, "root.Route(Switch).cases[0].activities.A(SetVariable)")
	assert.Contains(t, paths, "root.Route(Switch).defaultActivities.D(Wait)")
}

func TestConvertedTreeIsIndependentOfSource(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	deps := []any{map[string]any{"activity": "Prev", "dependencyConditions": []any{"Succeeded"}}}
	src := map[string]any{
		"name":           "Step",
		"type":           "SetVariable",
		"dependsOn":      deps,
		"typeProperties": map[string]any{"variableName": "v", "value": "x"},
	}

	out := c.ConvertActivities(s, []any{src}, "root")
	converted := out[0].(map[string]any)

	// Mutating the converted dependency list must not touch the source.
	converted["dependsOn"].([]any)[0].(map[string]any)["activity"] = "Changed"
	assert.Equal(t, "Prev", deps[0].(map[string]any)["activity"])
}

func TestConvertPassthrough(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	src := map[string]any{
		"name":              "CallWeb",
		"type":              "WebActivity",
		"linkedServiceName": map[string]any{"referenceName": "ls1"},
		"typeProperties":    map[string]any{"url": "https://example.test", "method": "GET"},
	}

	out := c.ConvertActivities(s, []any{src}, "root")
	converted := out[0].(map[string]any)

	assert.Equal(t, "WebActivity", converted["type"])
	assert.NotContains(t, converted, "linkedServiceName")
	// The source activity keeps its reference.
	assert.Contains(t, src, "linkedServiceName")

	recs := s.Summary.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "passthrough + linked service reference removed", recs[0].Notes)
}

func TestConvertPassthroughRerunStable(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	src := map[string]any{
		"name":              "CallWeb",
		"type":              "WebActivity",
		"linkedServiceName": map[string]any{"referenceName": "ls1"},
		"typeProperties":    map[string]any{"url": "https://example.test"},
	}

	once := c.ConvertActivities(s, []any{src}, "root")
	twice := c.ConvertActivities(newTestSession(), once, "root")
	assert.Equal(t, once, twice)
}

func TestConvertActivitiesUnnamedAndUnknown(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	out := c.ConvertActivities(s, []any{
		map[string]any{"type": "MysteryActivity"},
	}, "root")
	require.Len(t, out, 1)
	assert.Equal(t, "MysteryActivity", out[0].(map[string]any)["type"])
	assert.Contains(t, s.Summary.Summary().ConvertedPaths, "root.unnamed_0(MysteryActivity)")
}

func TestWithHandlerOverride(t *testing.T) {
	called := false
	c := New(DefaultConfig(), WithHandler("Wait", func(s *Session, act map[string]any) map[string]any {
		called = true
		return baseActivity(act, "Wait")
	}))
	s := newTestSession()

	c.ConvertActivities(s, []any{map[string]any{"name": "W", "type": "Wait"}}, "root")
	assert.True(t, called)
}

func TestNormalizePolicyDefaults(t *testing.T) {
	p := normalizePolicy(nil)
	assert.Equal(t, defaultPolicyTimeout, p["timeout"])
	assert.Equal(t, 30, p["retryIntervalInSeconds"])
	assert.Equal(t, 0, p["retry"])

	p = normalizePolicy(map[string]any{"retry": float64(2), "timeout": "0.01:00:00"})
	assert.Equal(t, "0.01:00:00", p["timeout"])
	assert.Equal(t, 2, p["retry"])
}
