// Package schemas registers the schema types of a scanned tree into the
// OpenAPI document. Schema types are struct types embedding the schema
// base marker; their JSON Schema is derived from the type-checked struct
// fields.
package schemas

import (
	"errors"
	"go/types"
	"reflect"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/wazo-platform/wazo-openapi-generator/internal/analysis"
	"github.com/wazo-platform/wazo-openapi-generator/internal/spec"
	"github.com/wazo-platform/wazo-openapi-generator/internal/strcase"
)

// DefaultBase matches any embedded type named Schema, regardless of the
// package declaring the marker.
var DefaultBase = analysis.TypeRef{Name: "Schema"}

// Register derives a component schema for every collected schema type
// and adds it to doc under the type name. Names already registered,
// typically by a YAML fragment, are downgraded to a warning; any other
// registration failure aborts.
func Register(pkgs []*analysis.Package, doc *spec.Document, base analysis.TypeRef, log *zap.Logger) error {
	for _, typ := range analysis.CollectTypes(pkgs, base, log) {
		d := &deriver{base: base, seen: make(map[*types.Named]bool)}
		ref := openapi3.NewSchemaRef("", d.structSchema(typ.Named, typ.Struct))

		if err := doc.AddSchema(typ.Name, ref); err != nil {
			var dup *spec.DuplicateComponentError
			if errors.As(err, &dup) {
				log.Warn("schema component already declared",
					zap.String("name", typ.Name),
					zap.String("package", typ.Pkg.PkgPath))
				continue
			}
			return err
		}
		log.Debug("registered schema component",
			zap.String("name", typ.Name),
			zap.String("package", typ.Pkg.PkgPath))
	}
	return nil
}

type deriver struct {
	base analysis.TypeRef
	seen map[*types.Named]bool
}

func (d *deriver) structSchema(named *types.Named, structType *types.Struct) *openapi3.Schema {
	if named != nil {
		d.seen[named] = true
	}

	schema := openapi3.NewObjectSchema()
	schema.Properties = make(openapi3.Schemas)
	d.addFields(schema, structType)
	return schema
}

func (d *deriver) addFields(schema *openapi3.Schema, structType *types.Struct) {
	for i := 0; i < structType.NumFields(); i++ {
		field := structType.Field(i)
		tag := reflect.StructTag(structType.Tag(i))

		if analysis.IsBaseField(field, d.base) {
			continue
		}
		if field.Embedded() {
			// embedded structs flatten into the parent, the way
			// encoding/json promotes their fields
			if embedded, ok := derefStruct(field.Type()); ok {
				d.addFields(schema, embedded)
			}
			continue
		}
		if !field.Exported() {
			continue
		}

		name, omitempty, skip := jsonName(field.Name(), tag)
		if skip {
			continue
		}

		schema.Properties[name] = d.fieldSchema(field.Type())

		_, isPointer := field.Type().(*types.Pointer)
		if !omitempty && !isPointer {
			schema.Required = append(schema.Required, name)
		}
	}
}

func (d *deriver) fieldSchema(t types.Type) *openapi3.SchemaRef {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	t = types.Unalias(t)

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == "time" && obj.Name() == "Time" {
			return openapi3.NewSchemaRef("", openapi3.NewDateTimeSchema())
		}
		if structType, ok := named.Underlying().(*types.Struct); ok {
			// schema types reference each other by component name;
			// plain structs inline, with a guard against cycles
			if analysis.EmbedsBase(named, d.base) {
				return openapi3.NewSchemaRef("#/components/schemas/"+obj.Name(), nil)
			}
			if d.seen[named] {
				return openapi3.NewSchemaRef("", openapi3.NewObjectSchema())
			}
			d.seen[named] = true
			return openapi3.NewSchemaRef("", d.structSchema(named, structType))
		}
		return d.fieldSchema(named.Underlying())
	}

	switch t := t.(type) {
	case *types.Basic:
		return openapi3.NewSchemaRef("", basicSchema(t))
	case *types.Slice:
		return d.arraySchema(t.Elem())
	case *types.Array:
		return d.arraySchema(t.Elem())
	case *types.Map:
		schema := openapi3.NewObjectSchema()
		ref := d.fieldSchema(t.Elem())
		schema.AdditionalProperties = openapi3.AdditionalProperties{Schema: ref}
		return openapi3.NewSchemaRef("", schema)
	}
	return openapi3.NewSchemaRef("", openapi3.NewSchema())
}

func (d *deriver) arraySchema(elem types.Type) *openapi3.SchemaRef {
	if basic, ok := types.Unalias(elem).(*types.Basic); ok && basic.Kind() == types.Byte {
		return openapi3.NewSchemaRef("", openapi3.NewBytesSchema())
	}
	schema := openapi3.NewArraySchema()
	schema.Items = d.fieldSchema(elem)
	return openapi3.NewSchemaRef("", schema)
}

func basicSchema(t *types.Basic) *openapi3.Schema {
	info := t.Info()
	switch {
	case info&types.IsBoolean != 0:
		return openapi3.NewBoolSchema()
	case info&types.IsInteger != 0:
		schema := openapi3.NewIntegerSchema()
		switch t.Kind() {
		case types.Int32, types.Uint32:
			schema.Format = "int32"
		case types.Int, types.Int64, types.Uint, types.Uint64:
			schema.Format = "int64"
		}
		return schema
	case info&types.IsFloat != 0:
		schema := openapi3.NewFloat64Schema()
		if t.Kind() == types.Float32 {
			schema.Format = "float"
		} else {
			schema.Format = "double"
		}
		return schema
	case info&types.IsString != 0:
		return openapi3.NewStringSchema()
	}
	return openapi3.NewSchema()
}

func derefStruct(t types.Type) (*types.Struct, bool) {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	if named, ok := types.Unalias(t).(*types.Named); ok {
		t = named.Underlying()
	}
	structType, ok := t.(*types.Struct)
	return structType, ok
}

func jsonName(fieldName string, tag reflect.StructTag) (name string, omitempty, skip bool) {
	value, ok := tag.Lookup("json")
	if !ok {
		return strcase.ToSnakeCase(fieldName), false, false
	}
	parts := strings.Split(value, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return "", false, true
	}
	name = parts[0]
	if name == "" {
		name = strcase.ToSnakeCase(fieldName)
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}
