package convert

import (
	"fmt"
	"strings"
)

// warehouseConnectionSettings is the inline DataWarehouse connection
// block attached to activities that execute against the gold warehouse.
func warehouseConnectionSettings(cfg Config) map[string]any {
	return map[string]any{
		"name": cfg.WarehouseName,
		"properties": map[string]any{
			"annotations": []any{},
			"type":        "DataWarehouse",
			"typeProperties": map[string]any{
				"endpoint":    cfg.WarehouseEndpoint,
				"artifactId":  cfg.WarehouseArtifactID,
				"workspaceId": cfg.WorkspaceID,
			},
			"externalReferences": map[string]any{"connection": cfg.WarehouseConnectionID},
		},
	}
}

func convertStoredProc(s *Session, act map[string]any) map[string]any {
	out := baseActivity(act, MapActivityType(activityType(act)))
	tp := typeProperties(act)

	params := map[string]any{}
	if raw, ok := tp["storedProcedureParameters"].(map[string]any); ok {
		for k, v := range raw {
			params[k] = FormatStoredProcParam(v)
		}
	}
	out["typeProperties"] = map[string]any{
		"storedProcedureName":       Flatten(tp["storedProcedureName"]),
		"storedProcedureParameters": params,
	}
	out["connectionSettings"] = warehouseConnectionSettings(s.Config)
	return out
}

func convertInvokePipeline(s *Session, act map[string]any) map[string]any {
	out := baseActivity(act, MapActivityType(activityType(act)))
	tp := typeProperties(act)

	// The upstream tooling has always emitted "3" here; preserved as-is.
	wait := any("3")
	if v, ok := tp["waitOnCompletion"]; ok {
		wait = v
	}
	pipelineID := any(s.Config.PlaceholderPipelineID)
	if v, ok := tp["pipelineId"]; ok {
		pipelineID = v
	}

	params := map[string]any{}
	if raw, ok := tp["parameters"].(map[string]any); ok {
		for k, v := range raw {
			params[k] = FormatInvokeParam(v)
		}
	}
	out["typeProperties"] = map[string]any{
		"waitOnCompletion": wait,
		"operationType":    "InvokeFabricPipeline",
		"pipelineId":       pipelineID,
		"workspaceId":      s.Config.WorkspaceID,
		"parameters":       params,
	}
	out["externalReferences"] = map[string]any{"connection": s.Config.FabricConnectionID}
	return out
}

func convertNotebook(s *Session, act map[string]any) map[string]any {
	out := baseActivity(act, MapActivityType(activityType(act)))
	tp := typeProperties(act)

	notebookID := any(s.Config.NotebookID)
	if v, ok := tp["notebookId"]; ok {
		notebookID = v
	}

	baseParams, ok := tp["baseParameters"].(map[string]any)
	if !ok {
		baseParams, _ = tp["parameters"].(map[string]any)
	}
	params := map[string]any{}
	for k, v := range baseParams {
		params[k] = FormatNotebookParam(v)
	}
	out["typeProperties"] = map[string]any{
		"notebookId":  notebookID,
		"workspaceId": s.Config.WorkspaceID,
		"parameters":  params,
	}
	return out
}

// convertLookup derives a single SQL query from whichever of the raw
// reader query, stored-procedure name or explicit query field is present,
// in that priority order.
func convertLookup(s *Session, act map[string]any) map[string]any {
	out := baseActivity(act, MapActivityType(activityType(act)))
	tp := typeProperties(act)
	src, _ := tp["source"].(map[string]any)

	var query any = ""
	switch {
	case hasKey(src, "sqlReaderQuery"):
		query = Flatten(src["sqlReaderQuery"])
	case hasKey(src, "storedProcedureName"):
		query = fmt.Sprintf("EXEC %v", Flatten(src["storedProcedureName"]))
	case hasKey(src, "query"):
		query = Flatten(src["query"])
	}

	queryKind := "String"
	if IsExpression(query) {
		queryKind = "Expression"
	}

	timeout := any("02:00:00")
	if v, ok := src["queryTimeout"]; ok {
		timeout = v
	} else if v, ok := tp["queryTimeout"]; ok {
		timeout = v
	}

	datasetType := MapDatasetType("DataWarehouseTable")
	s.Summary.RecordDatasetMapping("DataWarehouseTable", datasetType)

	newTP := map[string]any{
		"source": map[string]any{
			"type":            "DataWarehouseSource",
			"sqlReaderQuery":  map[string]any{"value": query, "type": queryKind},
			"queryTimeout":    timeout,
			"partitionOption": "None",
		},
		"datasetSettings": map[string]any{
			"annotations":        []any{},
			"type":               datasetType,
			"schema":             []any{},
			"connectionSettings": warehouseConnectionSettings(s.Config),
		},
	}
	if v, ok := tp["firstRowOnly"]; ok {
		newTP["firstRowOnly"] = v
	}
	out["typeProperties"] = newTP
	return out
}

func convertGetMetadata(s *Session, act map[string]any) map[string]any {
	out := baseActivity(act, MapActivityType(activityType(act)))
	tp := typeProperties(act)

	containerParam := s.ResolveParam(RoleSourceContainer)

	datasetType := MapDatasetType("DelimitedText")
	s.Summary.RecordDatasetMapping("DelimitedText (GetMetadata)", datasetType)

	location := map[string]any{
		"type":      MapLocationType("AzureBlobStorageLocation"),
		"container": exprParam(containerParam),
	}
	// The per-item metadata probe inside file loops carries the current
	// item's file name.
	if name, _ := act["name"].(string); name == "FileMetadata" {
		location["fileName"] = map[string]any{
			"value": "@item().name",
			"type":  "Expression",
		}
	}

	fieldList := deepCopyList(tp["fieldList"])
	out["typeProperties"] = map[string]any{
		"datasetSettings": map[string]any{
			"annotations":    []any{},
			"type":           datasetType,
			"typeProperties": map[string]any{"location": location},
		},
		"fieldList":      fieldList,
		"storeSettings":  map[string]any{"type": "AzureBlobStorageReadSettings"},
		"formatSettings": map[string]any{"type": "DelimitedTextReadSettings"},
	}
	return out
}

func convertSetVariable(s *Session, act map[string]any) map[string]any {
	out := baseActivity(act, MapActivityType(activityType(act)))
	tp := typeProperties(act)

	name, _ := tp["variableName"].(string)
	out["typeProperties"] = map[string]any{
		"variableName": name,
		"value":        FormatGenericValue(tp["value"]),
	}
	return out
}

// convertForEach shapes the loop itself; its body is carried through
// untouched and converted by the walker's container recursion, so each
// child is converted exactly once.
func convertForEach(s *Session, act map[string]any) map[string]any {
	out := baseActivity(act, MapActivityType(activityType(act)))
	tp := typeProperties(act)

	sequential := any(true)
	if v, ok := tp["isSequential"]; ok {
		sequential = v
	}
	out["typeProperties"] = map[string]any{
		"items":        FormatGenericValue(tp["items"]),
		"isSequential": sequential,
		"activities":   deepCopyList(tp["activities"]),
	}
	return out
}

func convertDelete(s *Session, act map[string]any) map[string]any {
	out := baseActivity(act, MapActivityType(activityType(act)))
	tp := typeProperties(act)

	// The original dataset reference survives only in the audit trail.
	datasetName := ""
	if ref, ok := tp["dataset"].(map[string]any); ok {
		datasetName, _ = ref["referenceName"].(string)
	}
	datasetType := MapDatasetType("DelimitedText")
	s.Summary.RecordDatasetMapping("Delete:"+datasetName, datasetType)

	enableLogging := any(false)
	if v, ok := tp["enableLogging"]; ok {
		enableLogging = v
	}
	out["typeProperties"] = map[string]any{
		"enableLogging": enableLogging,
		"storeSettings": map[string]any{
			"type":             "AzureBlobStorageReadSettings",
			"recursive":        true,
			"wildcardFileName": FormatGenericValue(tp["wildcardFileName"]),
		},
		"datasetSettings": map[string]any{
			"annotations": []any{},
			"type":        datasetType,
			"typeProperties": map[string]any{
				"location": map[string]any{"type": "AzureBlobStorageLocation"},
			},
			"schema": []any{},
		},
	}
	return out
}

func convertScript(s *Session, act map[string]any) map[string]any {
	out := baseActivity(act, MapActivityType(activityType(act)))
	tp := typeProperties(act)

	timeout := any("02:00:00")
	if v, ok := tp["scriptBlockExecutionTimeout"]; ok {
		timeout = v
	}
	out["typeProperties"] = map[string]any{
		"scripts":                     deepCopyList(tp["scripts"]),
		"scriptBlockExecutionTimeout": timeout,
	}
	out["externalReferences"] = map[string]any{"connection": s.Config.WarehouseConnectionID}
	return out
}

// convertHDInsight collapses the five HDInsight activity kinds into the
// single AzureHDInsight target type, keeping the specific kind in a
// dedicated field and merging the remaining properties through unchanged.
func convertHDInsight(s *Session, act map[string]any) map[string]any {
	srcType := activityType(act)
	out := baseActivity(act, "AzureHDInsight")

	kind := "Unknown"
	if strings.HasPrefix(srcType, "HDInsight") {
		kind = strings.TrimPrefix(srcType, "HDInsight")
	}

	newTP := deepCopy(typeProperties(act)).(map[string]any)
	if _, ok := newTP["hdiActivityType"]; !ok {
		newTP["hdiActivityType"] = kind
	}
	out["typeProperties"] = newTP

	s.Note(fmt.Sprintf("consolidation: %s -> AzureHDInsight (type: %s)", srcType, kind))
	return out
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}
