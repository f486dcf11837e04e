package extract

import "fmt"

// discoverTablesQuery lists user tables with row counts and sizes from
// the dedicated pool's distribution statistics, largest first.
const discoverTablesQuery = `
SELECT
    s.name as schema_name,
    t.name as table_name,
    SUM(ps.row_count) as row_count,
    SUM(ps.reserved_page_count) * 8.0 / 1024 / 1024 as size_gb
FROM sys.dm_pdw_nodes_db_partition_stats ps
INNER JOIN sys.pdw_nodes_tables nt ON ps.object_id = nt.object_id AND ps.pdw_node_id = nt.pdw_node_id
INNER JOIN sys.pdw_table_mappings tm ON nt.name = tm.physical_name
INNER JOIN sys.tables t ON tm.object_id = t.object_id
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
WHERE s.name NOT IN ('sys', 'INFORMATION_SCHEMA', 'migration')
GROUP BY s.name, t.name
HAVING SUM(ps.row_count) > 0
ORDER BY size_gb DESC`

const createMasterKeyStmt = `
IF NOT EXISTS (SELECT * FROM sys.symmetric_keys WHERE name = '##MS_DatabaseMasterKey##')
BEGIN
    CREATE MASTER KEY ENCRYPTION BY PASSWORD = 'Migration2024!Strong';
END`

const createCredentialStmt = `
IF NOT EXISTS (SELECT * FROM sys.database_scoped_credentials WHERE name = 'MigrationCredential')
BEGIN
    CREATE DATABASE SCOPED CREDENTIAL MigrationCredential
    WITH IDENTITY = 'Managed Identity';
END`

const createFileFormatStmt = `
IF NOT EXISTS (SELECT * FROM sys.external_file_formats WHERE name = 'ParquetFormat')
BEGIN
    CREATE EXTERNAL FILE FORMAT ParquetFormat
    WITH (
        FORMAT_TYPE = PARQUET,
        DATA_COMPRESSION = 'org.apache.hadoop.io.compress.SnappyCodec'
    );
END`

// createDataSourceStmt builds the external data source statement pointing
// at the staging container.
func createDataSourceStmt(storageAccount, container string) string {
	location := fmt.Sprintf("abfss://%s@%s.dfs.core.windows.net", container, storageAccount)
	return fmt.Sprintf(`
IF NOT EXISTS (SELECT * FROM sys.external_data_sources WHERE name = 'MigrationStaging')
BEGIN
    CREATE EXTERNAL DATA SOURCE MigrationStaging
    WITH (
        TYPE = HADOOP,
        LOCATION = '%s',
        CREDENTIAL = MigrationCredential
    );
END`, location)
}

// externalTableName is the per-table CETAS target name.
func externalTableName(table string) string {
	return fmt.Sprintf("ext_%s_migration", table)
}

// tableLocation is the staging folder for one table's parquet files.
func tableLocation(schema, table string) string {
	return fmt.Sprintf("%s/%s/", schema, table)
}

func dropExternalTableStmt(schema, table string) string {
	ext := externalTableName(table)
	return fmt.Sprintf(`
IF EXISTS (SELECT * FROM sys.external_tables WHERE name = '%s')
    DROP EXTERNAL TABLE [%s].[%s]`, ext, schema, ext)
}

func cetasStmt(schema, table string) string {
	return fmt.Sprintf(`
CREATE EXTERNAL TABLE [%s].[%s]
WITH (
    LOCATION = '%s',
    DATA_SOURCE = MigrationStaging,
    FILE_FORMAT = ParquetFormat
)
AS
SELECT * FROM [%s].[%s]`, schema, externalTableName(table), tableLocation(schema, table), schema, table)
}
