package convert

import "strings"

// Copy activity conversion: the full Dataset-to-DatasetSettings
// transformation, including source/sink type remapping, conditional
// copy-through of optional reader/writer fields, and synthesized dataset
// settings blocks.

// Optional copy-through fields. Formatted fields can hold expressions and
// pass through the value tagger; verbatim fields are copied as-is.
var (
	sourceFormattedFields = []string{
		"sqlReaderQuery",
		"sqlReaderStoredProcedureName",
		"oracleReaderQuery",
		"wildcardFileName",
		"wildcardFolderPath",
		"modifiedDatetimeStart",
		"modifiedDatetimeEnd",
	}
	sourceVerbatimFields = []string{
		"storedProcedureParameters",
		"queryTimeout",
		"isolationLevel",
		"partitionOption",
		"partitionSettings",
		"recursive",
		"maxConcurrentConnections",
		"additionalColumns",
	}
	sinkFormattedFields = []string{
		"preCopyScript",
	}
	sinkVerbatimFields = []string{
		"writeBehavior",
		"sqlWriterStoredProcedureName",
		"sqlWriterTableType",
		"storedProcedureParameters",
		"tableOption",
		"writeBatchSize",
		"writeBatchTimeout",
		"maxConcurrentConnections",
		"upsertSettings",
	}
	copyOptionFields = []string{
		"translator",
		"enableStaging",
		"enableSkipIncompatibleRow",
		"validateDataConsistency",
		"parallelCopies",
		"dataIntegrationUnits",
	}

	storeCommonFields = []string{
		"recursive", "wildcardFileName", "wildcardFolderPath",
		"enablePartitionDiscovery", "partitionRootPath",
		"deleteFilesAfterCompletion", "modifiedDatetimeStart",
		"modifiedDatetimeEnd", "maxConcurrentConnections",
		"disableMetricsCollection",
	}
	storeWriteFields = []string{
		"copyBehavior", "maxRowsPerFile", "metadata", "blockSizeInMB",
	}
)

func convertCopy(s *Session, act map[string]any) map[string]any {
	srcType := activityType(act)
	out := baseActivity(act, MapActivityType(srcType))
	tp := typeProperties(act)

	containerParam := s.ResolveParam(RoleSourceContainer)
	folderParam := s.ResolveParam(RoleSinkFolder)
	fileParam := s.ResolveParam(RoleSinkFile)
	_ = fileParam // reserved for the blob/blobfs sink modes

	source, _ := tp["source"].(map[string]any)
	sink, _ := tp["sink"].(map[string]any)

	newTP := map[string]any{
		"source": transformCopySource(s, source, containerParam),
		"sink":   transformCopySink(s, sink, folderParam),
	}
	for _, key := range copyOptionFields {
		if v, ok := tp[key]; ok {
			newTP[key] = deepCopy(v)
		}
	}
	out["typeProperties"] = newTP
	return out
}

func transformCopySource(s *Session, src map[string]any, containerParam string) map[string]any {
	srcType := "DelimitedTextSource"
	if t, ok := src["type"].(string); ok && t != "" {
		srcType = t
	}
	mapped := MapSourceType(srcType)
	s.Summary.RecordSourceTypeMapping(srcType, mapped)

	out := map[string]any{"type": mapped}
	for _, key := range sourceFormattedFields {
		if v, ok := src[key]; ok {
			out[key] = FormatValueWithType(v)
		}
	}
	for _, key := range sourceVerbatimFields {
		if v, ok := src[key]; ok {
			out[key] = deepCopy(v)
		}
	}
	if ss, ok := src["storeSettings"].(map[string]any); ok {
		out["storeSettings"] = transformStoreSettings(ss, true)
	}
	if fs, ok := src["formatSettings"].(map[string]any); ok {
		out["formatSettings"] = deepCopy(fs)
	}
	out["datasetSettings"] = buildSourceDatasetSettings(s, srcType, containerParam)
	return out
}

func transformCopySink(s *Session, sink map[string]any, folderParam string) map[string]any {
	sinkType := "DelimitedTextSink"
	if t, ok := sink["type"].(string); ok && t != "" {
		sinkType = t
	}
	mapped := MapSinkType(sinkType)
	s.Summary.RecordSinkTypeMapping(sinkType, mapped)

	out := map[string]any{"type": mapped}
	for _, key := range sinkFormattedFields {
		if v, ok := sink[key]; ok {
			out[key] = FormatValueWithType(v)
		}
	}
	for _, key := range sinkVerbatimFields {
		if v, ok := sink[key]; ok {
			out[key] = deepCopy(v)
		}
	}
	if ss, ok := sink["storeSettings"].(map[string]any); ok {
		out["storeSettings"] = transformStoreSettings(ss, false)
	}
	if fs, ok := sink["formatSettings"].(map[string]any); ok {
		out["formatSettings"] = deepCopy(fs)
	}
	out["datasetSettings"] = buildSinkDatasetSettings(s, folderParam)
	return out
}

func transformStoreSettings(settings map[string]any, isSource bool) map[string]any {
	settingsType, _ := settings["type"].(string)
	out := map[string]any{"type": MapStoreSettingsType(settingsType)}
	for _, key := range storeCommonFields {
		if v, ok := settings[key]; ok {
			out[key] = deepCopy(v)
		}
	}
	if !isSource {
		for _, key := range storeWriteFields {
			if v, ok := settings[key]; ok {
				out[key] = deepCopy(v)
			}
		}
	}
	return out
}

// delimitedTextDefaults are the fixed format properties Fabric expects on
// synthesized delimited-text datasets.
func delimitedTextDefaults(location map[string]any) map[string]any {
	return map[string]any{
		"location":         location,
		"columnDelimiter":  ",",
		"escapeChar":       `\`,
		"firstRowAsHeader": true,
		"quoteChar":        `"`,
	}
}

// buildSourceDatasetSettings synthesizes the dataset block for a copy
// source. Oracle sources become a table dataset bound to the Oracle
// connection; everything else gets the default delimited-text dataset on
// blob storage with a parameterized container.
func buildSourceDatasetSettings(s *Session, sourceType, containerParam string) map[string]any {
	if strings.Contains(sourceType, "Oracle") {
		datasetType := MapDatasetType("OracleTable")
		s.Summary.RecordDatasetMapping("OracleTable", datasetType)
		return map[string]any{
			"annotations":        []any{},
			"type":               datasetType,
			"schema":             []any{},
			"externalReferences": map[string]any{"connection": s.Config.OracleConnectionID},
		}
	}

	datasetType := MapDatasetType("DelimitedText")
	s.Summary.RecordDatasetMapping("DelimitedText (Source)", datasetType)
	return map[string]any{
		"annotations": []any{},
		"type":        datasetType,
		"typeProperties": delimitedTextDefaults(map[string]any{
			"type":      MapLocationType("AzureBlobStorageLocation"),
			"container": exprParam(containerParam),
		}),
		"schema":             []any{},
		"externalReferences": map[string]any{"connection": s.Config.BlobConnectionID},
	}
}

// buildSinkDatasetSettings synthesizes the dataset block for a copy sink
// based on the configured target mode. Only the lakehouse mode is
// implemented; other modes yield an empty block pending product
// clarification, and the gap is surfaced via the logger.
func buildSinkDatasetSettings(s *Session, folderParam string) map[string]any {
	target := s.Config.TargetSink
	if target == "" {
		target = SinkLakehouse
	}
	s.Summary.SetSinkChoice(target)

	if target != SinkLakehouse {
		s.Logger.Warn("sink target mode not implemented, emitting empty dataset settings",
			"target_sink", target)
		return map[string]any{}
	}

	datasetType := MapDatasetType("DelimitedText")
	s.Summary.RecordDatasetMapping("DelimitedText (Sink)", datasetType)
	return map[string]any{
		"annotations": []any{},
		"type":        datasetType,
		"connectionSettings": map[string]any{
			"name": s.Config.LakehouseName,
			"properties": map[string]any{
				"annotations": []any{},
				"type":        "Lakehouse",
				"typeProperties": map[string]any{
					"workspaceId": s.Config.WorkspaceID,
					"artifactId":  s.Config.LakehouseArtifactID,
					"rootFolder":  "Files",
				},
				"externalReferences": map[string]any{"connection": s.Config.LakehouseConnectionID},
			},
		},
		"typeProperties": delimitedTextDefaults(map[string]any{
			"type":       MapLocationType("LakehouseLocation"),
			"folderPath": exprParam(folderParam),
		}),
		"schema": []any{},
	}
}
