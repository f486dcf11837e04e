package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandipan8609/fabric-migration-v1/internal/extract"
	"github.com/sandipan8609/fabric-migration-v1/internal/load"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load staged Parquet files into the Fabric warehouse via COPY INTO",
		Run:   runLoad,
	}
	cmd.Flags().String("manifest", "", "Manifest path written by extract (overrides config)")
	cmd.Flags().Bool("typed", false, "Recreate tables from source column types before loading")
	return cmd
}

func runLoad(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	envCfg, err := loadEnv()
	if err != nil {
		fatalf("Failed to load environment: %v", err)
	}
	logger := newLogger(cmd)

	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath == "" {
		manifestPath = cfg.Load.ManifestPath
	}
	typed, _ := cmd.Flags().GetBool("typed")

	manifest, err := extract.ReadManifest(manifestPath)
	if err != nil {
		fatalf("Failed to read manifest %s: %v", manifestPath, err)
	}

	tokens, err := newTokenProvider(envCfg)
	if err != nil {
		fatalf("%v", err)
	}

	ctx := cmd.Context()
	target, err := openFabricWarehouse(ctx, envCfg, tokens)
	if err != nil {
		fatalf("Failed to connect to target warehouse: %v", err)
	}
	defer target.Close()

	opts := []load.Option{
		load.WithMaxErrors(cfg.Load.MaxErrors),
		load.WithLogger(logger),
	}
	if typed {
		source, err := openSource(ctx, envCfg, "sqlserver")
		if err != nil {
			fatalf("Failed to connect to source pool for column types: %v", err)
		}
		defer source.Close()
		opts = append(opts, load.WithSource(source))
	}

	loader := load.NewLoader(target, cfg.Load.Workers, opts...)
	results, err := loader.Run(ctx, manifest)
	if err != nil {
		fatalf("Load failed: %v", err)
	}

	fmt.Printf("Loaded %d tables from %s\n", len(results), manifestPath)
}
