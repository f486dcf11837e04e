package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandipan8609/fabric-migration-v1/internal/validate"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare row counts between source pool and target warehouse",
		Run:   runValidateCounts,
	}
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().String("source-driver", "sqlserver", "Source database driver (sqlserver or postgres)")
	return cmd
}

func runValidateCounts(cmd *cobra.Command, args []string) {
	envCfg, err := loadEnv()
	if err != nil {
		fatalf("Failed to load environment: %v", err)
	}
	logger := newLogger(cmd)
	ctx := cmd.Context()
	sourceDriver, _ := cmd.Flags().GetString("source-driver")

	source, err := openSource(ctx, envCfg, sourceDriver)
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

	validator := validate.NewValidator(source, target, logger,
		validate.WithSourceDriver(sourceDriver))
	report, err := validator.Run(ctx, envCfg.SynapseDatabase, envCfg.FabricDatabase)
	if err != nil {
		fatalf("Validation failed: %v", err)
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			fatalf("Failed to create report file: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := validate.WriteReport(out, report); err != nil {
		fatalf("Failed to write report: %v", err)
	}

	if !report.OK() {
		fatalf("Validation found %d mismatches and %d missing tables", report.Mismatches, report.Missing)
	}
	fmt.Printf("All %d tables match\n", report.Matches)
}
