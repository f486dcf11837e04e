package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandipan8609/fabric-migration-v1/internal/fabric"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a Fabric pipeline and wait for completion",
		Run:   runPipeline,
	}
	cmd.Flags().String("pipeline-id", "", "Fabric pipeline item id")
	cmd.Flags().String("workspace", "", "Fabric workspace id (overrides config)")
	cmd.Flags().StringArray("param", nil, "Pipeline parameter as name=value (repeatable)")
	cmd.Flags().Bool("no-wait", false, "Trigger without polling for completion")
	cmd.MarkFlagRequired("pipeline-id")
	return cmd
}

func runPipeline(cmd *cobra.Command, args []string) {
	pipelineID, _ := cmd.Flags().GetString("pipeline-id")
	workspaceID, _ := cmd.Flags().GetString("workspace")
	rawParams, _ := cmd.Flags().GetStringArray("param")
	noWait, _ := cmd.Flags().GetBool("no-wait")

	cfg, err := loadConfig(cmd)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	if workspaceID == "" {
		workspaceID = cfg.Fabric.WorkspaceID
	}
	if err := fabric.ValidateGUID("workspace id", workspaceID); err != nil {
		fatalf("%v", err)
	}
	if err := fabric.ValidateGUID("pipeline id", pipelineID); err != nil {
		fatalf("%v", err)
	}

	parameters := make(map[string]any, len(rawParams))
	for _, p := range rawParams {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			fatalf("Invalid --param %q: expected name=value", p)
		}
		parameters[name] = value
	}

	envCfg, err := loadEnv()
	if err != nil {
		fatalf("Failed to load environment: %v", err)
	}
	tokens, err := newTokenProvider(envCfg)
	if err != nil {
		fatalf("%v", err)
	}

	client := fabric.NewClient(tokens, fabric.WithLogger(newLogger(cmd)))
	ctx := cmd.Context()

	if noWait {
		runID, err := client.Trigger(ctx, workspaceID, pipelineID, parameters)
		if err != nil {
			fatalf("Failed to trigger pipeline: %v", err)
		}
		fmt.Printf("Triggered pipeline run %s\n", runID)
		return
	}

	result, err := client.Run(ctx, workspaceID, pipelineID, parameters)
	if err != nil {
		fatalf("Pipeline run failed: %v", err)
	}
	fmt.Printf("Run %s finished with status %s\n", result.RunID, result.Status)
	if result.Error != "" {
		fmt.Printf("Error: %s\n", result.Error)
	}
	if result.Status != fabric.StatusSucceeded {
		fatalf("Pipeline did not succeed")
	}
}
