package schemapack

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ContentError is a field-level finding from content validation.
type ContentError struct {
	// Path is a JSON-pointer-style location inside the resource content.
	Path    string
	Message string
}

func (e ContentError) String() string {
	if e.Path == "" || e.Path == "/" {
		return e.Message
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Path)
}

// ContentValidator checks a resource's content mapping against a class's
// content schema. It is a capability boundary: the engine never depends on a
// specific schema-validation implementation, and callers may swap it via
// WithContentValidator. The error return is reserved for a broken schema;
// content findings are returned as ContentErrors.
type ContentValidator interface {
	ValidateContent(schema map[string]any, content map[string]any) ([]ContentError, error)
}

// jsonSchemaValidator is the default ContentValidator, backed by a JSON
// Schema compiler (draft 2020-12). Compiled schemas are cached per call site
// by serialized form, so validating many resources of one class compiles the
// class schema once.
type jsonSchemaValidator struct {
	compiled map[string]*jsonschema.Schema
}

func newJSONSchemaValidator() *jsonSchemaValidator {
	return &jsonSchemaValidator{compiled: map[string]*jsonschema.Schema{}}
}

func (v *jsonSchemaValidator) ValidateContent(schema map[string]any, content map[string]any) ([]ContentError, error) {
	compiled, err := v.compile(schema)
	if err != nil {
		return nil, err
	}

	// Round-trip the content through JSON so the checker sees JSON-typed
	// values regardless of which decoder produced the mapping.
	instance, err := jsonRoundTrip(content)
	if err != nil {
		return nil, err
	}

	if err := compiled.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		return flattenCauses(ve), nil
	}
	return nil, nil
}

func (v *jsonSchemaValidator) compile(schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	if compiled, ok := v.compiled[string(raw)]; ok {
		return compiled, nil
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("content.schema.json", bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile("content.schema.json")
	if err != nil {
		return nil, err
	}
	v.compiled[string(raw)] = compiled
	return compiled, nil
}

func jsonRoundTrip(value map[string]any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenCauses walks the cause tree and keeps the leaves, which carry the
// most specific instance locations and messages.
func flattenCauses(ve *jsonschema.ValidationError) []ContentError {
	if len(ve.Causes) == 0 {
		path := ve.InstanceLocation
		if path == "" {
			path = "/"
		}
		return []ContentError{{Path: path, Message: ve.Message}}
	}
	var out []ContentError
	for _, cause := range ve.Causes {
		out = append(out, flattenCauses(cause)...)
	}
	return out
}
