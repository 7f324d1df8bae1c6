// Package spec holds the OpenAPI document being assembled. All discovery
// passes feed the same Document; named components reject duplicate
// registrations with a DuplicateComponentError so callers can decide
// whether the collision is fatal.
package spec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// DuplicateComponentError reports an attempt to register a component
// under a name that is already taken.
type DuplicateComponentError struct {
	Kind string
	Name string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("duplicate %s component %q", e.Kind, e.Name)
}

// Document accumulates components and paths for a single generator run.
type Document struct {
	t *openapi3.T
}

func New(title, version, openapiVersion string) *Document {
	return &Document{
		t: &openapi3.T{
			OpenAPI: openapiVersion,
			Info: &openapi3.Info{
				Title:   title,
				Version: version,
			},
			Paths: openapi3.NewPaths(),
			Components: &openapi3.Components{
				Schemas:    make(openapi3.Schemas),
				Parameters: make(openapi3.ParametersMap),
				Responses:  make(openapi3.ResponseBodies),
			},
		},
	}
}

// T exposes the underlying OpenAPI model.
func (d *Document) T() *openapi3.T {
	return d.t
}

func (d *Document) AddParameter(name string, param *openapi3.Parameter) error {
	if _, ok := d.t.Components.Parameters[name]; ok {
		return &DuplicateComponentError{Kind: "parameter", Name: name}
	}
	d.t.Components.Parameters[name] = &openapi3.ParameterRef{Value: param}
	return nil
}

func (d *Document) AddSchema(name string, schema *openapi3.SchemaRef) error {
	if _, ok := d.t.Components.Schemas[name]; ok {
		return &DuplicateComponentError{Kind: "schema", Name: name}
	}
	d.t.Components.Schemas[name] = schema
	return nil
}

func (d *Document) AddResponse(name string, response *openapi3.Response) error {
	if _, ok := d.t.Components.Responses[name]; ok {
		return &DuplicateComponentError{Kind: "response", Name: name}
	}
	d.t.Components.Responses[name] = &openapi3.ResponseRef{Value: response}
	return nil
}

// EnsurePath creates an empty path item for path if none exists, so a
// resource without operations still shows up in the document.
func (d *Document) EnsurePath(path string) {
	if d.t.Paths.Value(path) == nil {
		d.t.Paths.Set(path, &openapi3.PathItem{})
	}
}

// AddOperation attaches an operation to the path item for path, creating
// the item on first use. Registering the same method twice on one path
// overwrites the earlier operation, matching the underlying model.
func (d *Document) AddOperation(path, method string, op *openapi3.Operation) {
	item := d.t.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		d.t.Paths.Set(path, item)
	}
	item.SetOperation(strings.ToUpper(method), op)
}

// MarshalYAML serializes the document as YAML. The model marshals itself
// to JSON with deterministic key order; re-reading that JSON as a YAML
// node and stripping the flow styles yields stable block-style output.
// Empty mappings keep their flow form, YAML has no block spelling for
// them: a document without paths serializes as "paths: {}".
func (d *Document) MarshalYAML() ([]byte, error) {
	data, err := d.t.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
