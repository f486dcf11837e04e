package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertStoredProc(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "UpsertDim",
		"type": "SqlServerStoredProcedure",
		"typeProperties": map[string]any{
			"storedProcedureName": map[string]any{"value": "dbo.usp_upsert", "type": "Expression"},
			"storedProcedureParameters": map[string]any{
				"runDate": map[string]any{"value": "@pipeline().TriggerTime", "type": "String"},
				"mode":    map[string]any{"value": "full", "type": "String"},
			},
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	converted := out[0].(map[string]any)
	assert.Equal(t, "SqlServerStoredProcedure", converted["type"])

	tp := converted["typeProperties"].(map[string]any)
	assert.Equal(t, "dbo.usp_upsert", tp["storedProcedureName"])

	params := tp["storedProcedureParameters"].(map[string]any)
	runDate := params["runDate"].(map[string]any)
	inner, ok := runDate["value"].(map[string]any)
	require.True(t, ok, "expression parameter values are double-wrapped")
	assert.Equal(t, "Expression", inner["type"])
	mode := params["mode"].(map[string]any)
	assert.Equal(t, "full", mode["value"])
	assert.Equal(t, "String", mode["type"])

	conn := converted["connectionSettings"].(map[string]any)
	assert.Equal(t, "wh_sbm_gold", conn["name"])
	props := conn["properties"].(map[string]any)
	assert.Equal(t, "DataWarehouse", props["type"])
	connTP := props["typeProperties"].(map[string]any)
	assert.Equal(t, DefaultConfig().WarehouseArtifactID, connTP["artifactId"])
}

func TestConvertInvokePipeline(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "CallChild",
		"type": "ExecutePipeline",
		"typeProperties": map[string]any{
			"pipeline":   map[string]any{"referenceName": "child"},
			"parameters": map[string]any{"day": map[string]any{"value": "@utcnow()", "type": "Expression"}},
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	converted := out[0].(map[string]any)
	assert.Equal(t, "InvokePipeline", converted["type"])

	tp := converted["typeProperties"].(map[string]any)
	assert.Equal(t, "InvokeFabricPipeline", tp["operationType"])
	assert.Equal(t, "3", tp["waitOnCompletion"])
	assert.Equal(t, DefaultConfig().PlaceholderPipelineID, tp["pipelineId"])
	assert.Equal(t, DefaultConfig().WorkspaceID, tp["workspaceId"])
	assert.Equal(t, "@utcnow()", tp["parameters"].(map[string]any)["day"])

	refs := converted["externalReferences"].(map[string]any)
	assert.Equal(t, DefaultConfig().FabricConnectionID, refs["connection"])
}

func TestConvertNotebook(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "Transform",
		"type": "DatabricksNotebook",
		"typeProperties": map[string]any{
			"notebookPath": "/jobs/transform",
			"baseParameters": map[string]any{
				"batch":   float64(3),
				"dryRun":  true,
				"comment": "nightly",
			},
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	converted := out[0].(map[string]any)
	assert.Equal(t, "TridentNotebook", converted["type"])

	tp := converted["typeProperties"].(map[string]any)
	assert.Equal(t, DefaultConfig().NotebookID, tp["notebookId"])

	params := tp["parameters"].(map[string]any)
	assert.Equal(t, "int", params["batch"].(map[string]any)["type"])
	assert.Equal(t, "bool", params["dryRun"].(map[string]any)["type"])
	assert.Equal(t, "String", params["comment"].(map[string]any)["type"])
}

func TestConvertLookupQueryPriority(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "GetWatermark",
		"type": "Lookup",
		"typeProperties": map[string]any{
			"source": map[string]any{
				"type":                "AzureSqlSource",
				"storedProcedureName": "dbo.usp_watermark",
				"queryTimeout":        "01:00:00",
			},
			"firstRowOnly": true,
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	tp := out[0].(map[string]any)["typeProperties"].(map[string]any)

	source := tp["source"].(map[string]any)
	assert.Equal(t, "DataWarehouseSource", source["type"])
	query := source["sqlReaderQuery"].(map[string]any)
	assert.Equal(t, "EXEC dbo.usp_watermark", query["value"])
	assert.Equal(t, "String", query["type"])
	assert.Equal(t, "01:00:00", source["queryTimeout"])
	assert.Equal(t, "None", source["partitionOption"])
	assert.Equal(t, true, tp["firstRowOnly"])

	ds := tp["datasetSettings"].(map[string]any)
	assert.Equal(t, "DataWarehouseTable", ds["type"])
	assert.Equal(t, "wh_sbm_gold", ds["connectionSettings"].(map[string]any)["name"])
}

func TestConvertLookupExpressionQuery(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "GetRows",
		"type": "Lookup",
		"typeProperties": map[string]any{
			"source": map[string]any{
				"sqlReaderQuery": map[string]any{"value": "@variables('sql')", "type": "Expression"},
			},
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	source := out[0].(map[string]any)["typeProperties"].(map[string]any)["source"].(map[string]any)
	query := source["sqlReaderQuery"].(map[string]any)
	assert.Equal(t, "@variables('sql')", query["value"])
	assert.Equal(t, "Expression", query["type"])
	assert.Equal(t, "02:00:00", source["queryTimeout"])
}

func TestConvertGetMetadataFileSentinel(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	acts := []any{
		map[string]any{
			"name":           "FileMetadata",
			"type":           "GetMetadata",
			"typeProperties": map[string]any{"fieldList": []any{"itemName", "size"}},
		},
		map[string]any{
			"name":           "ContainerMetadata",
			"type":           "GetMetadata",
			"typeProperties": map[string]any{},
		},
	}

	out := c.ConvertActivities(s, acts, "root")

	fileTP := out[0].(map[string]any)["typeProperties"].(map[string]any)
	fileLoc := fileTP["datasetSettings"].(map[string]any)["typeProperties"].(map[string]any)["location"].(map[string]any)
	fileName := fileLoc["fileName"].(map[string]any)
	assert.Equal(t, "@item().name", fileName["value"])
	assert.Equal(t, []any{"itemName", "size"}, fileTP["fieldList"])

	contTP := out[1].(map[string]any)["typeProperties"].(map[string]any)
	contLoc := contTP["datasetSettings"].(map[string]any)["typeProperties"].(map[string]any)["location"].(map[string]any)
	assert.NotContains(t, contLoc, "fileName")
	assert.Equal(t, []any{}, contTP["fieldList"])
	assert.Equal(t, "AzureBlobStorageReadSettings", contTP["storeSettings"].(map[string]any)["type"])
}

func TestConvertSetVariable(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "SetPath",
		"type": "SetVariable",
		"typeProperties": map[string]any{
			"variableName": "path",
			"value":        "@concat('in/', item().name)",
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	tp := out[0].(map[string]any)["typeProperties"].(map[string]any)
	assert.Equal(t, "path", tp["variableName"])
	value := tp["value"].(map[string]any)
	assert.Equal(t, "Expression", value["type"])
}

func TestConvertForEachBodyConvertedOnce(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "PerFile",
		"type": "ForEach",
		"typeProperties": map[string]any{
			"items": "@activity('List').output.childItems",
			"activities": []any{
				map[string]any{"name": "Run", "type": "ExecutePipeline", "typeProperties": map[string]any{}},
			},
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	tp := out[0].(map[string]any)["typeProperties"].(map[string]any)

	assert.Equal(t, true, tp["isSequential"])
	assert.Equal(t, "Expression", tp["items"].(map[string]any)["type"])

	body := tp["activities"].([]any)
	assert.Equal(t, "InvokePipeline", body[0].(map[string]any)["type"])

	// The nested activity appears exactly once in the record stream.
	count := 0
	for _, rec := range s.Summary.Records() {
		if rec.From == "ExecutePipeline" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestConvertDelete(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "CleanupStaging",
		"type": "Delete",
		"typeProperties": map[string]any{
			"dataset":          map[string]any{"referenceName": "staging_csv"},
			"enableLogging":    true,
			"wildcardFileName": "*.csv",
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	tp := out[0].(map[string]any)["typeProperties"].(map[string]any)

	assert.Equal(t, true, tp["enableLogging"])
	store := tp["storeSettings"].(map[string]any)
	assert.Equal(t, true, store["recursive"])
	assert.Equal(t, "*.csv", store["wildcardFileName"].(map[string]any)["value"])

	sum := s.Summary.Summary()
	assert.Equal(t, "DelimitedText", sum.DatasetTypeMappings["Delete:staging_csv"])
}

func TestConvertScript(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "TruncateStage",
		"type": "Script",
		"typeProperties": map[string]any{
			"scripts": []any{map[string]any{"type": "Query", "text": "TRUNCATE TABLE stg.load"}},
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	converted := out[0].(map[string]any)
	tp := converted["typeProperties"].(map[string]any)

	require.Len(t, tp["scripts"], 1)
	assert.Equal(t, "02:00:00", tp["scriptBlockExecutionTimeout"])
	refs := converted["externalReferences"].(map[string]any)
	assert.Equal(t, DefaultConfig().WarehouseConnectionID, refs["connection"])
}

func TestConvertHDInsight(t *testing.T) {
	c := New(DefaultConfig())
	s := newTestSession()

	act := map[string]any{
		"name": "RunHive",
		"type": "HDInsightHive",
		"typeProperties": map[string]any{
			"scriptPath": "scripts/agg.hql",
		},
	}

	out := c.ConvertActivities(s, []any{act}, "root")
	converted := out[0].(map[string]any)
	assert.Equal(t, "AzureHDInsight", converted["type"])

	tp := converted["typeProperties"].(map[string]any)
	assert.Equal(t, "Hive", tp["hdiActivityType"])
	assert.Equal(t, "scripts/agg.hql", tp["scriptPath"])

	recs := s.Summary.Records()
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Notes, "Hive")
}
