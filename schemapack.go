package schemapack

import (
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// SchemaPackVersion is the version of the schemapack format understood by this
// package. A document's top-level `schemapack` field must match it.
const SchemaPackVersion = "0.3.0"

// SchemaPack describes a set of typed, linked classes. It is the schema side
// of the two-document format; datapacks hold data conforming to it.
type SchemaPack struct {
	Version     string                     `yaml:"schemapack"`
	Description string                     `yaml:"description,omitempty"`
	Classes     map[string]ClassDefinition `yaml:"classes"`

	// RootClass optionally restricts the document to the subgraph reachable
	// from one class. Datapacks paired with a rooted schemapack must declare a
	// root resource of this class.
	RootClass string `yaml:"rootClass,omitempty"`
}

// ClassDefinition declares one entity class: how its resources are
// identified, what their content looks like, and which relations they may
// hold to other classes.
type ClassDefinition struct {
	Description string              `yaml:"description,omitempty"`
	ID          IDSpec              `yaml:"id"`
	Content     ContentSchema       `yaml:"content"`
	Relations   map[string]Relation `yaml:"relations,omitempty"`
}

// IDSpec names the property under which resource ids of a class are exposed
// in denormalized representations. It must not collide with content or
// relation property names.
type IDSpec struct {
	PropertyName string `yaml:"propertyName"`
	Description  string `yaml:"description,omitempty"`
}

// ContentSchema is the structural contract for resource content of a class.
// On the wire it is either an inline JSON Schema object or a path string
// referencing a JSON/YAML schema file. Path references stay unresolved until
// Condense inlines them.
type ContentSchema struct {
	// Path is the unresolved file reference, empty for inline schemas.
	Path string
	// Schema is the inline JSON Schema object, nil while unresolved.
	Schema map[string]any
}

// Inline reports whether the content schema is available in inline form.
func (c ContentSchema) Inline() bool { return c.Schema != nil }

// Properties returns the sorted property names of an inline object schema.
// Unresolved or non-object schemas yield nil.
func (c ContentSchema) Properties() []string {
	props, ok := c.Schema["properties"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c ContentSchema) hasProperty(name string) bool {
	props, ok := c.Schema["properties"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = props[name]
	return ok
}

// UnmarshalYAML accepts either a scalar file path or an inline mapping.
func (c *ContentSchema) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var path string
		if err := node.Decode(&path); err != nil || path == "" {
			return structuralf("content schema must be a file path or a schema object")
		}
		*c = ContentSchema{Path: path}
		return nil
	case yaml.MappingNode:
		var schema map[string]any
		if err := node.Decode(&schema); err != nil {
			return err
		}
		*c = ContentSchema{Schema: schema}
		return nil
	default:
		return structuralf("content schema must be a file path or a schema object")
	}
}

// MarshalYAML emits the inline schema when resolved, the path otherwise.
func (c ContentSchema) MarshalYAML() (any, error) {
	if c.Inline() {
		return c.Schema, nil
	}
	return c.Path, nil
}

// Relation declares a directed, named edge from the declaring (origin) class
// to a target class. The mandatory/multiple pairs constrain both ends of the
// edge: the target side governs the shape of targetResources in a datapack,
// the origin side governs how many origins may (or must) reference a target.
type Relation struct {
	Description string      `yaml:"description,omitempty"`
	TargetClass string      `yaml:"targetClass"`
	Mandatory   RelationEnd `yaml:"mandatory"`
	Multiple    RelationEnd `yaml:"multiple"`
}

// RelationEnd holds one boolean per relation end.
type RelationEnd struct {
	Origin bool `yaml:"origin"`
	Target bool `yaml:"target"`
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// check verifies the document-local structural invariants that do not depend
// on a datapack. Collision checks involving content properties only apply to
// classes whose content schema is already inline; Condense re-runs check on
// its output so resolved schemas are covered as well.
func (sp *SchemaPack) check() error {
	if sp.Version != SchemaPackVersion {
		if sp.Version == "" {
			return structuralf("missing a `schemapack` field; is this a schemapack definition?")
		}
		return structuralf("unsupported schemapack version %q, supported: %s", sp.Version, SchemaPackVersion)
	}
	if len(sp.Classes) == 0 {
		return structuralf("a schemapack must define at least one class")
	}

	for _, className := range sortedKeys(sp.Classes) {
		class := sp.Classes[className]
		if !identifierPattern.MatchString(className) {
			return structuralf("invalid class name %q: names may only contain alphanumeric characters and underscores and must not start with a number", className)
		}
		if class.ID.PropertyName == "" {
			return structuralf("class %q is missing the id property name", className)
		}
		if err := checkInlineContentSchema(className, class.Content); err != nil {
			return err
		}
		if class.Content.hasProperty(class.ID.PropertyName) {
			return structuralf("class %q: id property %q also occurs in the content schema", className, class.ID.PropertyName)
		}

		for _, relationName := range sortedKeys(class.Relations) {
			relation := class.Relations[relationName]
			if !identifierPattern.MatchString(relationName) {
				return structuralf("class %q: invalid relation name %q: names may only contain alphanumeric characters and underscores and must not start with a number", className, relationName)
			}
			if _, ok := sp.Classes[relation.TargetClass]; !ok {
				return structuralf("relation %s.%s points to non-existing class %q", className, relationName, relation.TargetClass)
			}
			if relationName == class.ID.PropertyName {
				return structuralf("class %q: relation %q collides with the id property", className, relationName)
			}
			if class.Content.hasProperty(relationName) {
				return structuralf("class %q: relation %q collides with a content property", className, relationName)
			}
		}
	}

	if sp.RootClass != "" {
		if _, ok := sp.Classes[sp.RootClass]; !ok {
			return structuralf("the root class %q does not exist", sp.RootClass)
		}
	}
	return nil
}

func checkInlineContentSchema(className string, content ContentSchema) error {
	if !content.Inline() {
		if content.Path == "" {
			return structuralf("class %q is missing a content schema", className)
		}
		return nil
	}
	if t, ok := content.Schema["type"]; !ok || t != "object" {
		return structuralf("class %q: the content schema must be a JSON Schema object with type \"object\"", className)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// clone returns a shallow-enough copy for building derived documents: the
// class mapping is copied, class definitions themselves are shared since they
// are never mutated.
func (sp *SchemaPack) clone() *SchemaPack {
	out := *sp
	out.Classes = make(map[string]ClassDefinition, len(sp.Classes))
	for name, class := range sp.Classes {
		out.Classes[name] = class
	}
	return &out
}
