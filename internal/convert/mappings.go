package convert

import "strings"

// Type mapping tables between ADF and Fabric schemas. Lookups are total:
// unmapped names fall back to the input (or a generic/unknown marker for
// connector and activity kinds) so conversion never fails on a type name.

var sourceTypeMap = map[string]string{
	// Relational databases
	"AzureSqlSource":     "AzureSqlSource",
	"SqlServerSource":    "SqlServerSource",
	"SqlSource":          "SqlServerSource",
	"SqlDWSource":        "AzureSqlDWSource",
	"SqlMISource":        "AzureSqlMISource",
	"OracleSource":       "OracleSource",
	"MySqlSource":        "MySqlSource",
	"PostgreSqlSource":   "PostgreSqlSource",
	"PostgreSqlV2Source": "PostgreSqlV2Source",
	"DB2Source":          "Db2Source",
	"TeradataSource":     "TeradataSource",
	"SybaseSource":       "SybaseSource",

	// Cloud warehouses
	"SnowflakeSource":      "SnowflakeSource",
	"SnowflakeV2Source":    "SnowflakeV2Source",
	"AmazonRedshiftSource": "AmazonRedshiftSource",
	"GoogleBigQuerySource": "GoogleBigQuerySource",

	// File based
	"DelimitedTextSource": "DelimitedTextSource",
	"ParquetSource":       "ParquetSource",
	"JsonSource":          "JsonSource",
	"XmlSource":           "XmlSource",
	"AvroSource":          "AvroSource",
	"OrcSource":           "OrcSource",
	"BinarySource":        "BinarySource",
	"ExcelSource":         "ExcelSource",

	// Storage
	"AzureBlobStorageSource":   "BlobSource",
	"BlobSource":               "BlobSource",
	"AzureBlobFSSource":        "AzureBlobFSSource",
	"AzureDataLakeStoreSource": "AzureDataLakeStoreSource",
	"AzureFileStorageSource":   "AzureFileStorageSource",

	// NoSQL
	"CosmosDbSqlApiSource": "CosmosDbSqlApiSource",
	"MongoDbSource":        "MongoDbSource",
	"MongoDbV2Source":      "MongoDbV2Source",
	"MongoDbAtlasSource":   "MongoDbAtlasSource",

	// Web / REST
	"RestSource":  "RestSource",
	"HttpSource":  "HttpSource",
	"ODataSource": "ODataSource",

	// Fabric
	"DataWarehouseSource":  "DataWarehouseSource",
	"LakehouseTableSource": "LakehouseTableSource",

	// Other
	"SapTableSource":             "SapTableSource",
	"SalesforceSource":           "SalesforceSource",
	"DynamicsSource":             "DynamicsSource",
	"SharePointOnlineListSource": "SharePointOnlineListSource",
}

var sinkTypeMap = map[string]string{
	// Relational databases
	"AzureSqlSink":     "AzureSqlSink",
	"SqlServerSink":    "SqlServerSink",
	"SqlSink":          "SqlServerSink",
	"SqlDWSink":        "SqlDWSink",
	"SqlMISink":        "SqlMISink",
	"OracleSink":       "OracleSink",
	"MySqlSink":        "MySqlSink",
	"PostgreSqlSink":   "PostgreSqlSink",
	"PostgreSqlV2Sink": "PostgreSqlV2Sink",

	// Cloud warehouses
	"SnowflakeSink":   "SnowflakeSink",
	"SnowflakeV2Sink": "SnowflakeV2Sink",

	// File based
	"DelimitedTextSink": "DelimitedTextSink",
	"ParquetSink":       "ParquetSink",
	"JsonSink":          "JsonSink",
	"AvroSink":          "AvroSink",
	"OrcSink":           "OrcSink",
	"BinarySink":        "BinarySink",

	// Storage
	"BlobSink":               "BlobSink",
	"AzureBlobFSSink":        "AzureBlobFSSink",
	"AzureDataLakeStoreSink": "AzureDataLakeStoreSink",

	// Fabric specific
	"LakehouseSink":     "DelimitedTextSink",
	"DataWarehouseSink": "DataWarehouseSink",

	// NoSQL
	"CosmosDbSqlApiSink": "CosmosDbSqlApiSink",
	"MongoDbSink":        "MongoDbSink",
	"MongoDbV2Sink":      "MongoDbV2Sink",
	"MongoDbAtlasSink":   "MongoDbAtlasSink",
}

var datasetTypeMap = map[string]string{
	// SQL tables
	"AzureSqlTable":     "AzureSqlTable",
	"SqlServerTable":    "SqlServerTable",
	"AzureSqlDWTable":   "AzureSqlDWTable",
	"OracleTable":       "OracleTable",
	"MySqlTable":        "MySqlTable",
	"PostgreSqlTable":   "PostgreSqlTable",
	"PostgreSqlV2Table": "PostgreSqlV2Table",

	// File formats
	"DelimitedText": "DelimitedText",
	"Parquet":       "Parquet",
	"Json":          "Json",
	"Xml":           "Xml",
	"Binary":        "Binary",
	"Avro":          "Avro",
	"Orc":           "Orc",
	"Excel":         "Excel",

	// Storage types
	"AzureBlob":              "AzureBlob",
	"AzureBlobFSFile":        "AzureBlobFSFile",
	"AzureDataLakeStoreFile": "AzureDataLakeStoreFile",

	// Cloud warehouses
	"SnowflakeTable":   "SnowflakeTable",
	"SnowflakeV2Table": "SnowflakeV2Table",

	// Fabric specific
	"LakehouseTable":     "LakehouseTable",
	"DataWarehouseTable": "DataWarehouseTable",

	// NoSQL
	"CosmosDbSqlApiCollection": "CosmosDbSqlApiCollection",
	"MongoDbCollection":        "MongoDbCollection",
	"MongoDbV2Collection":      "MongoDbV2Collection",
}

var storeSettingsTypeMap = map[string]string{
	"AzureBlobStorageReadSettings":    "AzureBlobStorageReadSettings",
	"AzureBlobStorageWriteSettings":   "AzureBlobStorageWriteSettings",
	"AzureBlobFSReadSettings":         "AzureBlobFSReadSettings",
	"AzureBlobFSWriteSettings":        "AzureBlobFSWriteSettings",
	"AzureDataLakeStoreReadSettings":  "AzureDataLakeStoreReadSettings",
	"AzureDataLakeStoreWriteSettings": "AzureDataLakeStoreWriteSettings",
	"LakehouseReadSettings":           "LakehouseReadSettings",
	"LakehouseWriteSettings":          "LakehouseWriteSettings",
	"HttpReadSettings":                "HttpReadSettings",
	"SftpReadSettings":                "SftpReadSettings",
	"FileServerReadSettings":          "FileServerReadSettings",
}

var locationTypeMap = map[string]string{
	"AzureBlobStorageLocation":   "AzureBlobStorageLocation",
	"AzureBlobFSLocation":        "AzureBlobFSLocation",
	"AzureDataLakeStoreLocation": "AzureDataLakeStoreLocation",
	"LakehouseLocation":          "LakehouseLocation",
	"HttpServerLocation":         "HttpServerLocation",
	"FileServerLocation":         "FileServerLocation",
	"SftpLocation":               "SftpLocation",
}

// connectorTypeMap maps linked-service connector kinds to Fabric connection kinds.
var connectorTypeMap = map[string]string{
	"AzureSqlDatabase":       "AzureSqlDatabase",
	"SqlServer":              "SqlServer",
	"AzureSqlDW":             "AzureSynapseAnalytics",
	"AzureSynapseAnalytics":  "AzureSynapseAnalytics",
	"AzureBlobStorage":       "AzureBlobStorage",
	"AzureBlobFS":            "AzureBlobFS",
	"AzureDataLakeStore":     "AzureDataLakeStoreGen1",
	"AzureDataLakeStoreGen2": "AzureBlobFS",
	"CosmosDb":               "AzureCosmosDb",
	"MongoDb":                "MongoDB",
	"MongoDbV2":              "MongoDB",
	"Snowflake":              "Snowflake",
	"AmazonRedshift":         "AmazonRedshift",
	"GoogleBigQuery":         "GoogleBigQuery",
	"Oracle":                 "Oracle",
	"OracleServiceCloud":     "OracleServiceCloud",
	"MySql":                  "MySql",
	"PostgreSql":             "PostgreSql",
	"Db2":                    "Db2",
	"Teradata":               "Teradata",
	"Sybase":                 "Sybase",
	"HttpServer":             "RestService",
	"RestService":            "RestService",
	"OData":                  "OData",
	"WebApi":                 "WebApi",
	"Odbc":                   "Odbc",
	"FileServer":             "FileServer",
	"FtpServer":              "FtpServer",
	"Sftp":                   "Sftp",
	"Databricks":             "Databricks",
	"FabricDataPipeline":     "FabricDataPipeline",
	"FabricWarehouse":        "DataWarehouse",
	"FabricLakehouse":        "Lakehouse",
}

var activityTypeMap = map[string]string{
	"Copy":                     "Copy",
	"Lookup":                   "Lookup",
	"GetMetadata":              "GetMetadata",
	"Delete":                   "Delete",
	"Script":                   "Script",
	"SqlServerStoredProcedure": "SqlServerStoredProcedure",
	"ExecutePipeline":          "InvokePipeline",
	"InvokePipeline":           "InvokePipeline",
	"DatabricksNotebook":       "TridentNotebook",
	"SynapseNotebook":          "TridentNotebook",
	"Custom":                   "Custom",
	"ForEach":                  "ForEach",
	"IfCondition":              "IfCondition",
	"Switch":                   "Switch",
	"Until":                    "Until",
	"Wait":                     "Wait",
	"SetVariable":              "SetVariable",
	"AppendVariable":           "AppendVariable",
	"Filter":                   "Filter",
	"Validation":               "Validation",
	"WebActivity":              "WebActivity",
	"WebHook":                  "WebHook",
	"Fail":                     "Fail",
	"HDInsightHive":            "AzureHDInsight",
	"HDInsightPig":             "AzureHDInsight",
	"HDInsightMapReduce":       "AzureHDInsight",
	"HDInsightSpark":           "AzureHDInsight",
	"HDInsightStreaming":       "AzureHDInsight",
	"DatabricksSparkJar":       "DatabricksSparkJar",
	"DatabricksSparkPython":    "DatabricksSparkPython",
	"AzureMLBatchExecution":    "AzureMLBatchExecution",
	"AzureMLUpdateResource":    "AzureMLUpdateResource",
	"AzureMLExecutePipeline":   "AzureMLExecutePipeline",
}

func mapWithIdentity(table map[string]string, name string) string {
	if mapped, ok := table[name]; ok {
		return mapped
	}
	return name
}

// MapSourceType maps a copy-activity source type name.
func MapSourceType(name string) string { return mapWithIdentity(sourceTypeMap, name) }

// MapSinkType maps a copy-activity sink type name.
func MapSinkType(name string) string { return mapWithIdentity(sinkTypeMap, name) }

// MapDatasetType maps a dataset kind.
func MapDatasetType(name string) string { return mapWithIdentity(datasetTypeMap, name) }

// MapStoreSettingsType maps a store-settings kind.
func MapStoreSettingsType(name string) string { return mapWithIdentity(storeSettingsTypeMap, name) }

// MapLocationType maps a dataset location kind.
func MapLocationType(name string) string { return mapWithIdentity(locationTypeMap, name) }

// MapConnectorType maps a linked-service connector kind to a Fabric
// connection kind. Beyond exact match it tries a case-insensitive match,
// then substring containment in either direction, and finally "Generic".
func MapConnectorType(name string) string {
	if name == "" {
		return "Generic"
	}
	if mapped, ok := connectorTypeMap[name]; ok {
		return mapped
	}
	lower := strings.ToLower(name)
	for key, mapped := range connectorTypeMap {
		if strings.ToLower(key) == lower {
			return mapped
		}
	}
	for key, mapped := range connectorTypeMap {
		if strings.Contains(key, name) || strings.Contains(name, key) {
			return mapped
		}
	}
	return "Generic"
}

// MapActivityType maps an activity kind. Unmapped kinds pass through
// unchanged; an empty kind maps to "Unknown".
func MapActivityType(name string) string {
	if name == "" {
		return "Unknown"
	}
	return mapWithIdentity(activityTypeMap, name)
}
