package load

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandipan8609/fabric-migration-v1/internal/extract"
)

// Result records the outcome of loading one table.
type Result struct {
	Schema   string        `json:"schema"`
	Table    string        `json:"table"`
	RowCount int64         `json:"row_count"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Loader fills a Fabric warehouse from staged parquet via COPY INTO.
// An optional source connection supplies column catalogs for typed
// CREATE TABLE statements; without it COPY INTO infers the schema.
type Loader struct {
	target    *sql.DB
	source    *sql.DB
	workers   int
	maxErrors int
	logger    *slog.Logger

	copyRetries int
}

// Option configures a Loader.
type Option func(*Loader)

// WithSource attaches a source-pool connection for schema lookup.
func WithSource(db *sql.DB) Option {
	return func(l *Loader) { l.source = db }
}

// WithMaxErrors sets the COPY INTO error tolerance.
func WithMaxErrors(n int) Option {
	return func(l *Loader) { l.maxErrors = n }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader over an open target connection.
func NewLoader(target *sql.DB, workers int, opts ...Option) *Loader {
	if workers < 1 {
		workers = 1
	}
	l := &Loader{
		target:      target,
		workers:     workers,
		maxErrors:   10000,
		logger:      slog.Default(),
		copyRetries: 3,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetupExternalObjects creates the scoped credential, external data
// source and parquet format on the warehouse, each idempotently.
func (l *Loader) SetupExternalObjects(ctx context.Context, storageAccount, container string) error {
	steps := []struct {
		name string
		stmt string
	}{
		{"scoped credential", createCredentialStmt},
		{"external data source", createDataSourceStmt(storageAccount, container)},
		{"file format", createFileFormatStmt},
	}
	for _, step := range steps {
		if _, err := l.target.ExecContext(ctx, step.stmt); err != nil {
			return fmt.Errorf("failed to create %s: %w", step.name, err)
		}
		l.logger.Info("external object ready", "object", step.name)
	}
	return nil
}

// LoadAll loads every manifest table using a bounded worker pool.
func (l *Loader) LoadAll(ctx context.Context, tables []extract.Table) []Result {
	jobs := make(chan extract.Table)
	results := make(chan Result)
	var wg sync.WaitGroup

	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				results <- l.loadTable(ctx, t.Schema, t.Name)
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
			l.logger.Error("load failed", "schema", r.Schema, "table", r.Table, "err", r.Err)
		} else {
			l.logger.Info("loaded table",
				"schema", r.Schema, "table", r.Table,
				"rows", r.RowCount, "duration", r.Duration.Round(time.Millisecond).String())
		}
		out = append(out, r)
	}
	return out
}

func (l *Loader) loadTable(ctx context.Context, schema, table string) Result {
	start := time.Now()
	fail := func(err error) Result {
		return Result{Schema: schema, Table: table, Err: err, Error: err.Error(), Duration: time.Since(start)}
	}

	if _, err := l.target.ExecContext(ctx, createSchemaStmt(schema)); err != nil {
		return fail(fmt.Errorf("failed to create schema: %w", err))
	}
	if _, err := l.target.ExecContext(ctx, dropTableStmt(schema, table)); err != nil {
		return fail(fmt.Errorf("failed to drop existing table: %w", err))
	}

	if createStmt, err := l.buildCreateTable(ctx, schema, table); err != nil {
		l.logger.Warn("could not read source schema, relying on COPY INTO inference",
			"schema", schema, "table", table, "err", err)
	} else if createStmt != "" {
		if _, err := l.target.ExecContext(ctx, createStmt); err != nil {
			return fail(fmt.Errorf("failed to create table: %w", err))
		}
	}

	if err := l.copyInto(ctx, schema, table); err != nil {
		return fail(err)
	}

	var rowCount int64
	if err := l.target.QueryRowContext(ctx, countStmt(schema, table)).Scan(&rowCount); err != nil {
		return fail(fmt.Errorf("failed to count rows: %w", err))
	}

	return Result{Schema: schema, Table: table, RowCount: rowCount, Duration: time.Since(start)}
}

// copyInto runs COPY INTO with exponential backoff on transient errors.
func (l *Loader) copyInto(ctx context.Context, schema, table string) error {
	stmt := copyIntoStmt(schema, table, l.maxErrors)

	var lastErr error
	for attempt := 0; attempt < l.copyRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if _, err := l.target.ExecContext(ctx, stmt); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("copy into failed after %d attempts: %w", l.copyRetries, lastErr)
}

func (l *Loader) buildCreateTable(ctx context.Context, schema, table string) (string, error) {
	if l.source == nil {
		return "", nil
	}

	rows, err := l.source.QueryContext(ctx, sourceColumnsQuery, schema, table)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.DataType, &c.MaxLength, &c.Precision, &c.Scale, &c.Nullable); err != nil {
			return "", err
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", nil
	}
	return createTableStmt(schema, table, columns), nil
}

// UpdateStatistics refreshes statistics on every user table in the
// warehouse. Per-table failures are logged, not fatal.
func (l *Loader) UpdateStatistics(ctx context.Context) error {
	rows, err := l.target.QueryContext(ctx, listUserTablesQuery)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	type ident struct{ schema, table string }
	var tables []ident
	for rows.Next() {
		var t ident
		if err := rows.Scan(&t.schema, &t.table); err != nil {
			return err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, t := range tables {
		if _, err := l.target.ExecContext(ctx, updateStatisticsStmt(t.schema, t.table)); err != nil {
			l.logger.Warn("update statistics failed", "schema", t.schema, "table", t.table, "err", err)
		}
	}
	return nil
}

// Run loads every table in the manifest and refreshes statistics.
func (l *Loader) Run(ctx context.Context, manifest extract.Manifest) ([]Result, error) {
	if err := l.SetupExternalObjects(ctx, manifest.StorageAccount, manifest.Container); err != nil {
		return nil, err
	}
	if len(manifest.Tables) == 0 {
		l.logger.Warn("manifest lists no tables to load")
		return nil, nil
	}

	results := l.LoadAll(ctx, manifest.Tables)

	if err := l.UpdateStatistics(ctx); err != nil {
		l.logger.Warn("statistics refresh failed", "err", err)
	}

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
		}
	}
	if failures > 0 {
		return results, fmt.Errorf("%d of %d tables failed to load", failures, len(manifest.Tables))
	}
	return results, nil
}
