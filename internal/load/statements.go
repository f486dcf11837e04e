package load

import (
	"fmt"
	"strings"
)

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
        FORMAT_TYPE = PARQUET
    );
END`

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

func createSchemaStmt(schema string) string {
	return fmt.Sprintf(`
IF NOT EXISTS (SELECT * FROM sys.schemas WHERE name = '%s')
BEGIN
    EXEC('CREATE SCHEMA [%s]')
END`, schema, schema)
}

func dropTableStmt(schema, table string) string {
	return fmt.Sprintf(`
IF EXISTS (SELECT * FROM sys.tables t
          INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
          WHERE s.name = '%s' AND t.name = '%s')
BEGIN
    DROP TABLE [%s].[%s]
END`, schema, table, schema, table)
}

// sourceColumnsQuery reads a table's column catalog from the source pool.
const sourceColumnsQuery = `
SELECT
    c.name AS column_name,
    t.name AS data_type,
    c.max_length,
    c.precision,
    c.scale,
    c.is_nullable
FROM sys.columns c
INNER JOIN sys.types t ON c.user_type_id = t.user_type_id
INNER JOIN sys.tables tbl ON c.object_id = tbl.object_id
INNER JOIN sys.schemas s ON tbl.schema_id = s.schema_id
WHERE s.name = @p1 AND tbl.name = @p2
ORDER BY c.column_id`

// Column is one source column definition.
type Column struct {
	Name      string
	DataType  string
	MaxLength int
	Precision int
	Scale     int
	Nullable  bool
}

// columnTypeString maps a source column type to a Fabric-supported
// declaration. MAX types are capped at the Fabric limits, legacy datetime
// and money kinds become their modern equivalents.
func columnTypeString(c Column) string {
	switch c.DataType {
	case "varchar", "char", "nvarchar", "nchar", "binary", "varbinary":
		if c.MaxLength == -1 {
			if c.DataType == "varchar" || c.DataType == "varbinary" {
				return fmt.Sprintf("%s(8000)", c.DataType)
			}
			return fmt.Sprintf("%s(4000)", c.DataType)
		}
		if c.DataType == "nvarchar" || c.DataType == "nchar" {
			return fmt.Sprintf("%s(%d)", c.DataType, c.MaxLength/2)
		}
		return fmt.Sprintf("%s(%d)", c.DataType, c.MaxLength)
	case "decimal", "numeric":
		return fmt.Sprintf("%s(%d,%d)", c.DataType, c.Precision, c.Scale)
	case "datetime":
		return "DATETIME2(3)"
	case "smalldatetime":
		return "DATETIME2(0)"
	case "money":
		return "DECIMAL(19,4)"
	case "smallmoney":
		return "DECIMAL(10,4)"
	default:
		return c.DataType
	}
}

// createTableStmt builds the target CREATE TABLE from source columns.
func createTableStmt(schema, table string, columns []Column) string {
	defs := make([]string, 0, len(columns))
	for _, c := range columns {
		nullable := "NOT NULL"
		if c.Nullable {
			nullable = "NULL"
		}
		defs = append(defs, fmt.Sprintf("[%s] %s %s", c.Name, columnTypeString(c), nullable))
	}
	return fmt.Sprintf("CREATE TABLE [%s].[%s] (\n    %s\n)", schema, table, strings.Join(defs, ",\n    "))
}

func copyIntoStmt(schema, table string, maxErrors int) string {
	return fmt.Sprintf(`
COPY INTO [%s].[%s]
FROM '%s/%s/'
WITH (
    DATA_SOURCE = 'MigrationStaging',
    FILE_TYPE = 'PARQUET',
    MAXERRORS = %d,
    ERRORFILE = 'errors/%s/%s/'
)`, schema, table, schema, table, maxErrors, schema, table)
}

func countStmt(schema, table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM [%s].[%s]", schema, table)
}

const listUserTablesQuery = `
SELECT s.name, t.name
FROM sys.tables t
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
WHERE s.name NOT IN ('sys', 'INFORMATION_SCHEMA')`

func updateStatisticsStmt(schema, table string) string {
	return fmt.Sprintf("UPDATE STATISTICS [%s].[%s]", schema, table)
}
