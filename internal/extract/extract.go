package extract

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Table identifies one source table with its discovery metadata.
type Table struct {
	Schema   string  `json:"schema"`
	Name     string  `json:"table"`
	RowCount int64   `json:"row_count"`
	SizeGB   float64 `json:"size_gb"`
}

// Result records the outcome of extracting one table.
type Result struct {
	Table    Table         `json:"table"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Manifest is the extraction record consumed by the load phase. It lists
// every table whose parquet files landed in the staging container.
type Manifest struct {
	StorageAccount string    `json:"storage_account"`
	Container      string    `json:"container"`
	ExtractedAt    time.Time `json:"extracted_at"`
	Tables         []Table   `json:"tables"`
}

// WriteManifest persists a manifest to disk.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by a previous extraction.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}

// Extractor stages Synapse dedicated pool tables into ADLS parquet via
// CETAS.
type Extractor struct {
	db             *sql.DB
	storageAccount string
	container      string
	workers        int
	logger         *slog.Logger
}

// NewExtractor creates an extractor over an open source connection.
func NewExtractor(db *sql.DB, storageAccount, container string, workers int, logger *slog.Logger) *Extractor {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		db:             db,
		storageAccount: storageAccount,
		container:      container,
		workers:        workers,
		logger:         logger,
	}
}

// SetupExternalObjects creates the master key, scoped credential,
// external data source and parquet file format, each idempotently.
func (e *Extractor) SetupExternalObjects(ctx context.Context) error {
	steps := []struct {
		name string
		stmt string
	}{
		{"master key", createMasterKeyStmt},
		{"scoped credential", createCredentialStmt},
		{"external data source", createDataSourceStmt(e.storageAccount, e.container)},
		{"file format", createFileFormatStmt},
	}
	for _, step := range steps {
		if _, err := e.db.ExecContext(ctx, step.stmt); err != nil {
			return fmt.Errorf("failed to create %s: %w", step.name, err)
		}
		e.logger.Info("external object ready", "object", step.name)
	}
	return nil
}

// DiscoverTables lists the tables to extract, largest first.
func (e *Extractor) DiscoverTables(ctx context.Context) ([]Table, error) {
	rows, err := e.db.QueryContext(ctx, discoverTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("table discovery query failed: %w", err)
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Schema, &t.Name, &t.RowCount, &t.SizeGB); err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var totalRows int64
	var totalSize float64
	for _, t := range tables {
		totalRows += t.RowCount
		totalSize += t.SizeGB
	}
	e.logger.Info("discovered tables",
		"count", len(tables), "total_rows", totalRows, "total_size_gb", fmt.Sprintf("%.2f", totalSize))
	return tables, nil
}

// ExtractAll runs CETAS for every table using a bounded worker pool and
// returns per-table results in completion order.
func (e *Extractor) ExtractAll(ctx context.Context, tables []Table) []Result {
	jobs := make(chan Table)
	results := make(chan Result)
	var wg sync.WaitGroup

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				results <- e.extractTable(ctx, t)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, t := range tables {
			select {
			case <-ctx.Done():
				return
			case jobs <- t:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []Result
	for r := range results {
		if r.Err != nil {
			e.logger.Error("extract failed",
				"schema", r.Table.Schema, "table", r.Table.Name, "err", r.Err)
		} else {
			e.logger.Info("extracted table",
				"schema", r.Table.Schema, "table", r.Table.Name,
				"rows", r.Table.RowCount, "duration", r.Duration.Round(time.Millisecond).String())
		}
		out = append(out, r)
	}
	return out
}

func (e *Extractor) extractTable(ctx context.Context, t Table) Result {
	start := time.Now()

	if _, err := e.db.ExecContext(ctx, dropExternalTableStmt(t.Schema, t.Name)); err != nil {
		return failed(t, start, fmt.Errorf("failed to drop external table: %w", err))
	}
	if _, err := e.db.ExecContext(ctx, cetasStmt(t.Schema, t.Name)); err != nil {
		return failed(t, start, fmt.Errorf("cetas failed: %w", err))
	}
	return Result{Table: t, Duration: time.Since(start)}
}

func failed(t Table, start time.Time, err error) Result {
	return Result{Table: t, Err: err, Error: err.Error(), Duration: time.Since(start)}
}

// Run performs the whole extraction: setup, discovery, parallel CETAS,
// manifest. It returns the results and the manifest of succeeded tables.
func (e *Extractor) Run(ctx context.Context, manifestPath string) ([]Result, Manifest, error) {
	if err := e.SetupExternalObjects(ctx); err != nil {
		return nil, Manifest{}, err
	}

	tables, err := e.DiscoverTables(ctx)
	if err != nil {
		return nil, Manifest{}, err
	}
	if len(tables) == 0 {
		e.logger.Warn("no tables found to extract")
		return nil, Manifest{}, nil
	}

	results := e.ExtractAll(ctx, tables)

	manifest := Manifest{
		StorageAccount: e.storageAccount,
		Container:      e.container,
		ExtractedAt:    time.Now().UTC(),
	}
	failures := 0
	for _, r := range results {
		if r.Err == nil {
			manifest.Tables = append(manifest.Tables, r.Table)
		} else {
			failures++
		}
	}

	if manifestPath != "" {
		if err := WriteManifest(manifestPath, manifest); err != nil {
			return results, manifest, err
		}
		e.logger.Info("manifest written", "path", manifestPath, "tables", len(manifest.Tables))
	}

	if failures > 0 {
		return results, manifest, fmt.Errorf("%d of %d tables failed to extract", failures, len(tables))
	}
	return results, manifest, nil
}
