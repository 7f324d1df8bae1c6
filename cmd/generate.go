package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wazo-platform/wazo-openapi-generator/internal/generator"
	"github.com/wazo-platform/wazo-openapi-generator/internal/logging"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the OpenAPI specifications for an application",
	Long: `Change into the source code directory, scan the root package for YAML
fragments, schema types and HTTP resources, and write the assembled OpenAPI
document to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		appName, err := flags.GetString("app-name")
		if err != nil {
			return err
		}
		appVersion, err := flags.GetString("app-version")
		if err != nil {
			return err
		}
		openapiVersion, err := flags.GetString("openapi-version")
		if err != nil {
			return err
		}
		rootPackage, err := flags.GetString("package")
		if err != nil {
			return err
		}
		output, err := flags.GetString("output")
		if err != nil {
			return err
		}
		sourceCode, err := flags.GetString("source-code")
		if err != nil {
			return err
		}
		prefix, err := flags.GetString("prefix")
		if err != nil {
			return err
		}

		log, err := logging.Setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		// fragment and package discovery are relative to the
		// application's source tree
		if err := os.Chdir(sourceCode); err != nil {
			return err
		}

		return generator.Generate(generator.Options{
			AppName:        appName,
			AppVersion:     appVersion,
			OpenAPIVersion: openapiVersion,
			PackageDir:     rootPackage,
			Output:         output,
			Prefix:         prefix,
		}, log)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("app-name", "", "name of the application the specifications describe")
	generateCmd.Flags().String("app-version", "", "version of the application")
	generateCmd.Flags().String("openapi-version", "", "version of the generated OpenAPI specifications")
	generateCmd.Flags().String("package", "", "root package directory to analyze, relative to the source code directory")
	generateCmd.Flags().StringP("output", "o", "", "file the generated specifications are written to")
	generateCmd.Flags().String("source-code", "", "directory containing the root package")
	generateCmd.Flags().String("prefix", "", "prefix prepended to every endpoint, e.g. /1.1")

	for _, flag := range []string{"app-name", "app-version", "openapi-version", "package", "output", "source-code"} {
		cobra.CheckErr(generateCmd.MarkFlagRequired(flag))
	}
}
