package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandipan8609/fabric-migration-v1/pkg/config"
)

func newCheckConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the migration config file",
		Run:   runCheckConfig,
	}
}

func runCheckConfig(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("config")
	if err := checkConfig(path); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration is valid!")
}

func checkConfig(path string) error {
	cfg, err := config.NewParser().Parse(path)
	if err != nil {
		return err
	}
	return cfg.Validate()
}
