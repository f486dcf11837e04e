package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandipan8609/fabric-migration-v1/internal/extract"
	"github.com/sandipan8609/fabric-migration-v1/internal/validate"
)

// Extractor stages source tables and produces the manifest the loader
// consumes.
type Extractor interface {
	Run(ctx context.Context, manifestPath string) ([]extract.Result, extract.Manifest, error)
}

// Loader fills the target warehouse from a manifest.
type Loader interface {
	Load(ctx context.Context, manifest extract.Manifest) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, manifest extract.Manifest) error

func (f LoaderFunc) Load(ctx context.Context, manifest extract.Manifest) error {
	return f(ctx, manifest)
}

// Validator compares source and target after loading.
type Validator interface {
	Run(ctx context.Context, sourceName, targetName string) (validate.Report, error)
}

// Options tune an end-to-end migration run.
type Options struct {
	ManifestPath string
	SourceName   string
	TargetName   string
	Retries      int
	RetryDelay   time.Duration
	SkipValidate bool
}

// Orchestrator drives extract, load and validate as one migration.
type Orchestrator struct {
	extractor Extractor
	loader    Loader
	validator Validator
	logger    *slog.Logger
	opts      Options
}

// NewOrchestrator creates a migration orchestrator. The validator may be
// nil when validation is skipped.
func NewOrchestrator(e Extractor, l Loader, v Validator, logger *slog.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 5 * time.Second
	}
	return &Orchestrator{extractor: e, loader: l, validator: v, logger: logger, opts: opts}
}

// Execute runs the migration with retry on the extract and load phases.
// Validation runs once, after a successful load.
func (o *Orchestrator) Execute(ctx context.Context) (validate.Report, error) {
	var lastErr error

	for attempt := 0; attempt <= o.opts.Retries; attempt++ {
		if attempt > 0 {
			o.logger.Warn("retrying migration",
				"attempt", attempt, "max", o.opts.Retries, "err", lastErr)
			select {
			case <-ctx.Done():
				return validate.Report{}, ctx.Err()
			case <-time.After(o.opts.RetryDelay):
			}
		}

		if err := o.runOnce(ctx); err != nil {
			lastErr = err
			continue
		}

		if o.opts.SkipValidate || o.validator == nil {
			return validate.Report{}, nil
		}
		report, err := o.validator.Run(ctx, o.opts.SourceName, o.opts.TargetName)
		if err != nil {
			return validate.Report{}, fmt.Errorf("validation failed: %w", err)
		}
		if !report.OK() {
			return report, fmt.Errorf("validation found %d mismatches and %d missing tables",
				report.Mismatches, report.Missing)
		}
		return report, nil
	}

	return validate.Report{}, fmt.Errorf("migration failed after %d retries, last error: %v",
		o.opts.Retries, lastErr)
}

func (o *Orchestrator) runOnce(ctx context.Context) error {
	o.logger.Info("starting extraction")
	_, manifest, err := o.extractor.Run(ctx, o.opts.ManifestPath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	o.logger.Info("extraction complete", "tables", len(manifest.Tables))

	o.logger.Info("starting load")
	if err := o.loader.Load(ctx, manifest); err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	o.logger.Info("load complete")
	return nil
}
