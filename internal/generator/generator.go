// Package generator sequences the discovery passes and writes the
// finished OpenAPI document.
package generator

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wazo-platform/wazo-openapi-generator/internal/analysis"
	"github.com/wazo-platform/wazo-openapi-generator/internal/fragments"
	"github.com/wazo-platform/wazo-openapi-generator/internal/routes"
	"github.com/wazo-platform/wazo-openapi-generator/internal/schemas"
	"github.com/wazo-platform/wazo-openapi-generator/internal/spec"
)

type Options struct {
	AppName        string
	AppVersion     string
	OpenAPIVersion string
	// PackageDir is the root package directory to scan, relative to
	// the working directory.
	PackageDir string
	Output     string
	// Prefix is prepended to every discovered URL rule, e.g. /1.1.
	Prefix string
	// SchemaBase overrides the marker type schema discovery looks
	// for. The zero value matches any embedded type named Schema.
	SchemaBase analysis.TypeRef
}

// Generate runs the YAML fragment, schema and route passes against one
// document and writes the result to opts.Output. There is no rollback:
// a failing pass aborts before any output is written.
func Generate(opts Options, log *zap.Logger) error {
	doc := spec.New(opts.AppName, opts.AppVersion, opts.OpenAPIVersion)

	if err := fragments.Load(opts.PackageDir, doc, log); err != nil {
		return err
	}

	pkgs, err := analysis.LoadTree(opts.PackageDir, log)
	if err != nil {
		return err
	}

	base := opts.SchemaBase
	if base.Name == "" {
		base = schemas.DefaultBase
	}
	if err := schemas.Register(pkgs, doc, base, log); err != nil {
		return err
	}
	if err := routes.Register(pkgs, doc, opts.Prefix, log); err != nil {
		return err
	}

	data, err := doc.MarshalYAML()
	if err != nil {
		return err
	}

	log.Info("writing OpenAPI specifications", zap.String("output", opts.Output))
	if err := os.WriteFile(opts.Output, data, 0o600); err != nil {
		return fmt.Errorf("failed to write specifications: %w", err)
	}
	return nil
}
