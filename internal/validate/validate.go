package validate

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"
)

// sourceCountsQuery reads per-table row counts from the dedicated pool's
// distribution statistics.
const sourceCountsQuery = `
SELECT
    s.name as schema_name,
    t.name as table_name,
    SUM(ps.row_count) as row_count
FROM sys.dm_pdw_nodes_db_partition_stats ps
INNER JOIN sys.pdw_nodes_tables nt ON ps.object_id = nt.object_id AND ps.pdw_node_id = nt.pdw_node_id
INNER JOIN sys.pdw_table_mappings tm ON nt.name = tm.physical_name
INNER JOIN sys.tables t ON tm.object_id = t.object_id
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
WHERE s.name NOT IN ('sys', 'INFORMATION_SCHEMA', 'migration')
GROUP BY s.name, t.name
ORDER BY s.name, t.name`

// targetCountsQuery reads per-table row counts from the warehouse's
// partition catalog, heap and clustered index rows only.
const targetCountsQuery = `
SELECT
    s.name as schema_name,
    t.name as table_name,
    SUM(p.rows) as row_count
FROM sys.tables t
INNER JOIN sys.schemas s ON t.schema_id = s.schema_id
INNER JOIN sys.partitions p ON t.object_id = p.object_id
WHERE s.name NOT IN ('sys', 'INFORMATION_SCHEMA', 'migration')
    AND p.index_id IN (0, 1)
GROUP BY s.name, t.name
ORDER BY s.name, t.name`

// sourceCountsQueryPostgres is the PostgreSQL variant, used when the
// source is an on-prem database rather than a dedicated pool. Counts
// come from the statistics collector, so a recent ANALYZE is assumed.
const sourceCountsQueryPostgres = `
SELECT schemaname AS schema_name, relname AS table_name, n_live_tup AS row_count
FROM pg_stat_user_tables
WHERE schemaname NOT IN ('migration')
ORDER BY schemaname, relname`

// Comparison statuses.
const (
	StatusMatch        = "match"
	StatusMismatch     = "mismatch"
	StatusMissing      = "missing_in_target"
	StatusOnlyInTarget = "only_in_target"
)

// TableComparison is one table's source/target row count comparison.
type TableComparison struct {
	Table      string  `json:"table"`
	Source     int64   `json:"source"`
	Target     int64   `json:"target"`
	Difference int64   `json:"difference,omitempty"`
	PctDiff    float64 `json:"pct_diff,omitempty"`
	Status     string  `json:"status"`
}

// Report is the full validation outcome.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Source      string            `json:"source"`
	Target      string            `json:"target"`
	Tables      []TableComparison `json:"tables"`
	Matches     int               `json:"matches"`
	Mismatches  int               `json:"mismatches"`
	Missing     int               `json:"missing"`
	Extra       int               `json:"extra"`
}

// OK reports whether the migration is complete: no mismatches and no
// tables missing in the target. Extra target tables don't fail
// validation.
func (r Report) OK() bool {
	return r.Mismatches == 0 && r.Missing == 0
}

// Validator compares row counts between the source pool and the target
// warehouse.
type Validator struct {
	source      *sql.DB
	target      *sql.DB
	logger      *slog.Logger
	sourceQuery string
}

// Option adjusts validator behavior.
type Option func(*Validator)

// WithSourceDriver selects the count query matching the source driver,
// "sqlserver" (default) or "postgres".
func WithSourceDriver(driver string) Option {
	return func(v *Validator) {
		if driver == "postgres" {
			v.sourceQuery = sourceCountsQueryPostgres
		}
	}
}

// NewValidator creates a validator over two open connections.
func NewValidator(source, target *sql.DB, logger *slog.Logger, opts ...Option) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Validator{source: source, target: target, logger: logger, sourceQuery: sourceCountsQuery}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run compares every table and builds the report. sourceName and
// targetName only label the report header.
func (v *Validator) Run(ctx context.Context, sourceName, targetName string) (Report, error) {
	sourceCounts, err := readCounts(ctx, v.source, v.sourceQuery)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read source counts: %w", err)
	}
	v.logger.Info("source tables read", "count", len(sourceCounts))

	targetCounts, err := readCounts(ctx, v.target, targetCountsQuery)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read target counts: %w", err)
	}
	v.logger.Info("target tables read", "count", len(targetCounts))

	report := Compare(sourceCounts, targetCounts)
	report.GeneratedAt = time.Now().UTC()
	report.Source = sourceName
	report.Target = targetName

	v.logger.Info("validation finished",
		"matches", report.Matches, "mismatches", report.Mismatches,
		"missing", report.Missing, "extra", report.Extra)
	return report, nil
}

// Compare classifies every table found on either side.
func Compare(source, target map[string]int64) Report {
	names := make(map[string]struct{}, len(source)+len(target))
	for name := range source {
		names[name] = struct{}{}
	}
	for name := range target {
		names[name] = struct{}{}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	var report Report
	for _, name := range sorted {
		sourceCount, inSource := source[name]
		targetCount, inTarget := target[name]

		cmp := TableComparison{Table: name, Source: sourceCount, Target: targetCount}
		switch {
		case !inSource:
			cmp.Status = StatusOnlyInTarget
			report.Extra++
		case !inTarget:
			cmp.Status = StatusMissing
			report.Missing++
		case sourceCount == targetCount:
			cmp.Status = StatusMatch
			report.Matches++
		default:
			cmp.Status = StatusMismatch
			cmp.Difference = absInt64(sourceCount - targetCount)
			if sourceCount > 0 {
				cmp.PctDiff = float64(cmp.Difference) / float64(sourceCount) * 100
			}
			report.Mismatches++
		}
		report.Tables = append(report.Tables, cmp)
	}
	return report
}

func readCounts(ctx context.Context, db *sql.DB, query string) (map[string]int64, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var schema, table string
		var count sql.NullInt64
		if err := rows.Scan(&schema, &table, &count); err != nil {
			return nil, err
		}
		counts[schema+"."+table] = count.Int64
	}
	return counts, rows.Err()
}

// WriteReport renders the report as text.
func WriteReport(w io.Writer, r Report) error {
	var writeErr error
	line := func(format string, args ...any) {
		if writeErr != nil {
			return
		}
		_, writeErr = fmt.Fprintf(w, format+"\n", args...)
	}

	line("MIGRATION VALIDATION REPORT")
	line("Generated: %s", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	line("Source: %s", r.Source)
	line("Target: %s", r.Target)
	line("")
	line("Tables compared: %d", len(r.Tables))
	line("Matches: %d", r.Matches)
	line("Mismatches: %d", r.Mismatches)
	line("Missing in target: %d", r.Missing)
	line("Extra in target: %d", r.Extra)

	if r.Mismatches > 0 {
		line("")
		line("Tables with row count mismatches:")
		for _, t := range r.Tables {
			if t.Status != StatusMismatch {
				continue
			}
			line("  %s: source=%d target=%d (diff: %d, %.2f%%)",
				t.Table, t.Source, t.Target, t.Difference, t.PctDiff)
		}
	}
	if r.Missing > 0 {
		line("")
		line("Tables missing in target:")
		for _, t := range r.Tables {
			if t.Status == StatusMissing {
				line("  %s (%d rows in source)", t.Table, t.Source)
			}
		}
	}
	return writeErr
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
