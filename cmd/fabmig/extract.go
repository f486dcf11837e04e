package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandipan8609/fabric-migration-v1/internal/extract"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Export source tables to Parquet staging via CETAS",
		Run:   runExtract,
	}
	cmd.Flags().String("manifest", "", "Manifest output path (overrides config)")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	envCfg, err := loadEnv()
	if err != nil {
		fatalf("Failed to load environment: %v", err)
	}
	logger := newLogger(cmd)

	storageAccount := cfg.Extract.StorageAccount
	if storageAccount == "" {
		storageAccount = envCfg.StorageAccount
	}
	if storageAccount == "" {
		fatalf("Staging storage not configured: set extract.storage_account or STAGING_STORAGE_ACCOUNT")
	}
	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath == "" {
		manifestPath = cfg.Extract.ManifestPath
	}

	ctx := cmd.Context()
	source, err := openSource(ctx, envCfg, "sqlserver")
	if err != nil {
		fatalf("Failed to connect to source pool: %v", err)
	}
	defer source.Close()

	extractor := extract.NewExtractor(source, storageAccount, cfg.Extract.StorageContainer, cfg.Extract.Workers, logger)
	results, manifest, err := extractor.Run(ctx, manifestPath)
	if err != nil {
		fatalf("Extraction failed: %v", err)
	}

	var total float64
	for _, t := range manifest.Tables {
		total += t.SizeGB
	}
	fmt.Printf("Extracted %d tables (%.1f GB, %d attempted) to %s; manifest written to %s\n",
		len(manifest.Tables), total, len(results), cfg.Extract.StorageContainer, manifestPath)
}
