package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter config.yaml and .env.template",
		Run:   runInit,
	}
	cmd.Flags().Bool("force", false, "Overwrite existing files")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")

	files := map[string]string{
		"config.yaml":   configTemplate,
		".env.template": envTemplate,
	}

	for filename, content := range files {
		if err := generateFile(filename, content, force); err != nil {
			fatalf("Failed to generate %s: %v", filename, err)
		}
	}
	fmt.Println("Generated config.yaml and .env.template")
}

func generateFile(filename, content string, force bool) error {
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", filename)
		}
	}
	return os.WriteFile(filename, []byte(content), 0644)
}
