package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSourceType(t *testing.T) {
	assert.Equal(t, "SqlServerSource", MapSourceType("SqlSource"))
	assert.Equal(t, "BlobSource", MapSourceType("AzureBlobStorageSource"))
	assert.Equal(t, "OracleSource", MapSourceType("OracleSource"))
	// Unmapped names pass through unchanged.
	assert.Equal(t, "FooSource", MapSourceType("FooSource"))
}

func TestMapSinkType(t *testing.T) {
	assert.Equal(t, "DelimitedTextSink", MapSinkType("LakehouseSink"))
	assert.Equal(t, "SqlServerSink", MapSinkType("SqlSink"))
	assert.Equal(t, "BarSink", MapSinkType("BarSink"))
}

func TestMapActivityType(t *testing.T) {
	assert.Equal(t, "InvokePipeline", MapActivityType("ExecutePipeline"))
	assert.Equal(t, "TridentNotebook", MapActivityType("DatabricksNotebook"))
	assert.Equal(t, "TridentNotebook", MapActivityType("SynapseNotebook"))
	assert.Equal(t, "AzureHDInsight", MapActivityType("HDInsightSpark"))
	assert.Equal(t, "Wait", MapActivityType("Wait"))
	assert.Equal(t, "SomethingNew", MapActivityType("SomethingNew"))
	assert.Equal(t, "Unknown", MapActivityType(""))
}

func TestMapConnectorType(t *testing.T) {
	assert.Equal(t, "AzureSynapseAnalytics", MapConnectorType("AzureSqlDW"))
	assert.Equal(t, "Generic", MapConnectorType(""))
	// Case-insensitive fallback.
	assert.Equal(t, "SqlServer", MapConnectorType("sqlserver"))
	// Substring fallback in either direction.
	assert.Equal(t, "Snowflake", MapConnectorType("Snowflake2"))
	assert.Equal(t, "Generic", MapConnectorType("NoSuchConnector"))
}

func TestMapDatasetAndLocationTypes(t *testing.T) {
	assert.Equal(t, "DelimitedText", MapDatasetType("DelimitedText"))
	assert.Equal(t, "DataWarehouseTable", MapDatasetType("DataWarehouseTable"))
	assert.Equal(t, "LakehouseLocation", MapLocationType("LakehouseLocation"))
	assert.Equal(t, "LakehouseWriteSettings", MapStoreSettingsType("LakehouseWriteSettings"))
}
