// Package fragments loads hand-written OpenAPI component fragments.
// Fragment files follow the docstring convention: everything up to the
// first line starting with "---" is prose and is ignored, the remainder
// is the YAML document.
package fragments

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wazo-platform/wazo-openapi-generator/internal/discover"
	"github.com/wazo-platform/wazo-openapi-generator/internal/spec"
)

const fragmentSuffix = ".yml"

// ExtractDocstring returns the YAML portion of a docstring-style
// document. The second return value is false when the document has no
// "---" marker and therefore no YAML at all.
func ExtractDocstring(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "---") {
			return strings.Join(lines[i:], "\n"), true
		}
	}
	return "", false
}

type fragment struct {
	Parameters map[string]any `yaml:"parameters"`
	Schemas    map[string]any `yaml:"schemas"`
	Responses  map[string]any `yaml:"responses"`
}

// Load parses every .yml file under root and registers its parameters,
// schemas and responses into doc. Absent sections are not an error;
// malformed YAML and duplicate names propagate.
func Load(root string, doc *spec.Document, log *zap.Logger) error {
	files, err := discover.Files(root, "", fragmentSuffix)
	if err != nil {
		return err
	}

	for _, file := range files {
		log.Debug("loading YAML fragment", zap.String("file", file))
		if err := loadFile(file, doc, log); err != nil {
			return fmt.Errorf("failed to load fragment %s: %w", file, err)
		}
	}
	return nil
}

func loadFile(file string, doc *spec.Document, log *zap.Logger) error {
	data, err := os.ReadFile(file) // #nosec G304 - paths come from the scanned tree
	if err != nil {
		return err
	}

	body, ok := ExtractDocstring(string(data))
	if !ok {
		log.Debug("fragment has no docstring marker, skipping", zap.String("file", file))
		return nil
	}

	var frag fragment
	if err := yaml.Unmarshal([]byte(body), &frag); err != nil {
		return err
	}

	for name, value := range frag.Parameters {
		log.Debug("registering parameter fragment", zap.String("name", name), zap.String("file", file))
		var param openapi3.Parameter
		if err := decodeAs(value, &param); err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
		if err := doc.AddParameter(name, &param); err != nil {
			return err
		}
	}

	for name, value := range frag.Schemas {
		log.Debug("registering schema fragment", zap.String("name", name), zap.String("file", file))
		ref := &openapi3.SchemaRef{}
		if err := decodeAs(value, ref); err != nil {
			return fmt.Errorf("schema %s: %w", name, err)
		}
		if err := doc.AddSchema(name, ref); err != nil {
			return err
		}
	}

	for name, value := range frag.Responses {
		log.Debug("registering response fragment", zap.String("name", name), zap.String("file", file))
		var response openapi3.Response
		if err := decodeAs(value, &response); err != nil {
			return fmt.Errorf("response %s: %w", name, err)
		}
		if err := doc.AddResponse(name, &response); err != nil {
			return err
		}
	}
	return nil
}

// decodeAs routes a decoded YAML value through JSON into one of the
// OpenAPI model types, which only expose JSON unmarshalers.
func decodeAs(value any, target json.Unmarshaler) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return target.UnmarshalJSON(data)
}
