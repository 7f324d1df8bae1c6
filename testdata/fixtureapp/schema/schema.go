// Package schema declares the marker type the generator looks for.
package schema

// Schema marks a struct as an API schema. Embed it in every type that
// should end up under components.schemas.
type Schema struct{}
