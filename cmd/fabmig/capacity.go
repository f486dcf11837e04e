package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandipan8609/fabric-migration-v1/internal/capacity"
	"github.com/sandipan8609/fabric-migration-v1/pkg/config"
)

func newCapacityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Manage the Fabric capacity backing the target workspace",
	}

	suspendCmd := &cobra.Command{
		Use:   "suspend",
		Short: "Pause the Fabric capacity",
		Run: func(cmd *cobra.Command, args []string) {
			runCapacityAction(cmd, "suspend", "")
		},
	}
	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume the Fabric capacity",
		Run: func(cmd *cobra.Command, args []string) {
			runCapacityAction(cmd, "resume", "")
		},
	}
	scaleCmd := &cobra.Command{
		Use:   "scale <sku>",
		Short: "Scale the Fabric capacity to a new SKU (F2..F2048)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runCapacityAction(cmd, "scale", args[0])
		},
	}

	cmd.PersistentFlags().String("resource-id", "", "Full ARM resource ID of the capacity (overrides config)")
	cmd.AddCommand(suspendCmd, resumeCmd, scaleCmd)
	return cmd
}

func capacityResourceID(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if id, _ := cmd.Flags().GetString("resource-id"); id != "" {
		return id, capacity.ValidateResourceID(id)
	}
	c := cfg.Capacity
	if c.SubscriptionID == "" || c.ResourceGroup == "" || c.Name == "" {
		return "", fmt.Errorf("capacity not configured: set capacity.subscription_id, capacity.resource_group and capacity.name, or pass --resource-id")
	}
	id := fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Fabric/capacities/%s",
		c.SubscriptionID, c.ResourceGroup, c.Name)
	return id, capacity.ValidateResourceID(id)
}

func runCapacityAction(cmd *cobra.Command, action, sku string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	envCfg, err := loadEnv()
	if err != nil {
		fatalf("Failed to load environment: %v", err)
	}
	tokens, err := newTokenProvider(envCfg)
	if err != nil {
		fatalf("%v", err)
	}
	resourceID, err := capacityResourceID(cmd, cfg)
	if err != nil {
		fatalf("Invalid capacity target: %v", err)
	}

	client := capacity.NewClient(tokens, capacity.WithLogger(newLogger(cmd)))
	ctx := cmd.Context()

	switch action {
	case "suspend":
		err = client.Suspend(ctx, resourceID)
	case "resume":
		err = client.Resume(ctx, resourceID)
	case "scale":
		err = client.Scale(ctx, resourceID, sku)
	}

	if errors.Is(err, capacity.ErrAlreadyInState) {
		fmt.Printf("Capacity is already in the requested state\n")
		return
	}
	if err != nil {
		fatalf("Capacity %s failed: %v", action, err)
	}
	fmt.Printf("Capacity %s succeeded\n", action)
}
