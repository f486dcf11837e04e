package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandipan8609/fabric-migration-v1/internal/extract"
	"github.com/sandipan8609/fabric-migration-v1/internal/load"
	"github.com/sandipan8609/fabric-migration-v1/internal/migrate"
	"github.com/sandipan8609/fabric-migration-v1/internal/validate"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run extract, load and validate as one end-to-end migration",
		Run:   runMigrate,
	}
	cmd.Flags().Bool("skip-validate", false, "Skip the row-count comparison after loading")
	cmd.Flags().Bool("typed", false, "Recreate target tables from source column types")
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	envCfg, err := loadEnv()
	if err != nil {
		fatalf("Failed to load environment: %v", err)
	}
	logger := newLogger(cmd)
	skipValidate, _ := cmd.Flags().GetBool("skip-validate")
	typed, _ := cmd.Flags().GetBool("typed")

	storageAccount := cfg.Extract.StorageAccount
	if storageAccount == "" {
		storageAccount = envCfg.StorageAccount
	}
	if storageAccount == "" {
		fatalf("Staging storage not configured: set extract.storage_account or STAGING_STORAGE_ACCOUNT")
	}

	retryDelay, err := time.ParseDuration(cfg.Migration.RetryDelay)
	if err != nil {
		fatalf("Invalid migration.retry_delay %q: %v", cfg.Migration.RetryDelay, err)
	}

	ctx := cmd.Context()

	source, err := openSource(ctx, envCfg, "sqlserver")
	if err != nil {
		fatalf("Failed to connect to source pool: %v", err)
	}
	defer source.Close()

	tokens, err := newTokenProvider(envCfg)
	if err != nil {
		fatalf("%v", err)
	}
	target, err := openFabricWarehouse(ctx, envCfg, tokens)
	if err != nil {
		fatalf("Failed to connect to target warehouse: %v", err)
	}
	defer target.Close()

	extractor := extract.NewExtractor(source, storageAccount, cfg.Extract.StorageContainer, cfg.Extract.Workers, logger)

	loadOpts := []load.Option{
		load.WithMaxErrors(cfg.Load.MaxErrors),
		load.WithLogger(logger),
	}
	if typed {
		loadOpts = append(loadOpts, load.WithSource(source))
	}
	loader := load.NewLoader(target, cfg.Load.Workers, loadOpts...)

	orchestrator := migrate.NewOrchestrator(
		extractor,
		migrate.LoaderFunc(func(ctx context.Context, m extract.Manifest) error {
			_, err := loader.Run(ctx, m)
			return err
		}),
		validate.NewValidator(source, target, logger),
		logger,
		migrate.Options{
			ManifestPath: cfg.Extract.ManifestPath,
			SourceName:   envCfg.SynapseDatabase,
			TargetName:   envCfg.FabricDatabase,
			Retries:      cfg.Migration.Retries,
			RetryDelay:   retryDelay,
			SkipValidate: skipValidate,
		},
	)

	report, err := orchestrator.Execute(ctx)
	if err != nil {
		if len(report.Tables) > 0 {
			validate.WriteReport(os.Stdout, report)
		}
		fatalf("Migration failed: %v", err)
	}

	if skipValidate {
		fmt.Println("Migration complete (validation skipped)")
		return
	}
	if err := validate.WriteReport(os.Stdout, report); err != nil {
		fatalf("Failed to write report: %v", err)
	}
	fmt.Println("Migration complete")
}
