package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wazo-openapi-gen",
	Short: "Generate OpenAPI specifications from an application's source tree",
	Long: `Scan a Go application's source tree for schema types, HTTP resources and
hand-written YAML fragments, and assemble them into a single OpenAPI document.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
