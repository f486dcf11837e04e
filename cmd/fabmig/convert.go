package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandipan8609/fabric-migration-v1/internal/convert"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an ADF pipeline definition to Fabric format",
		Run:   runConvert,
	}
	cmd.Flags().StringP("file", "f", "", "Path to the exported ADF pipeline JSON")
	cmd.Flags().StringP("output", "o", "", "Output path (default: <input>_fabric.json)")
	cmd.Flags().String("log", "", "Audit log path (default: <input>_conversion.log)")
	cmd.Flags().Bool("summary", false, "Print the conversion summary to stdout")
	cmd.Flags().Bool("debug", false, "Mirror the audit log to stdout")
	cmd.MarkFlagRequired("file")
	return cmd
}

func runConvert(cmd *cobra.Command, args []string) {
	inputPath, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")
	logPath, _ := cmd.Flags().GetString("log")
	printSummary, _ := cmd.Flags().GetBool("summary")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := loadConfig(cmd)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	logger := newLogger(cmd)

	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	if outputPath == "" {
		outputPath = stem + "_fabric.json"
	}
	if logPath == "" {
		logPath = stem + "_conversion.log"
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fatalf("Failed to read pipeline file: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		fatalf("Failed to parse pipeline JSON: %v", err)
	}

	audit, err := convert.OpenAuditLog(logPath, debug)
	if err != nil {
		fatalf("Failed to open audit log: %v", err)
	}
	defer audit.Close()

	converter := convert.New(cfg.Conversion, convert.WithLogger(logger))
	converted, summary := converter.ConvertPipeline(doc, audit)

	out, err := json.MarshalIndent(converted, "", "  ")
	if err != nil {
		fatalf("Failed to encode converted pipeline: %v", err)
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		fatalf("Failed to write output: %v", err)
	}

	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fatalf("Failed to encode summary: %v", err)
	}
	if err := os.WriteFile(stem+"_summary.json", summaryJSON, 0644); err != nil {
		fatalf("Failed to write summary: %v", err)
	}
	if printSummary {
		fmt.Println(string(summaryJSON))
	}

	fmt.Printf("Converted %s -> %s (%d activities, audit log %s)\n",
		inputPath, outputPath, len(summary.Mappings), logPath)
}
