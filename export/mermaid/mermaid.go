// Package mermaid renders a schemapack as mermaid entity-relationship
// markup: one entity block per class listing content properties tagged as
// required or optional, and one line per relation using cardinality notation
// derived from the mandatory/multiple matrix.
package mermaid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/packspec/schemapack"
)

// Export renders the given schemapack as an erDiagram. With withProperties
// set, each entity block lists the properties of the class content schema;
// otherwise entity blocks are empty. The schemapack must be condensed.
func Export(sp *schemapack.SchemaPack, withProperties bool) (string, error) {
	blocks := make([]string, 0, len(sp.Classes))
	classNames := make([]string, 0, len(sp.Classes))
	for className := range sp.Classes {
		classNames = append(classNames, className)
	}
	sort.Strings(classNames)

	for _, className := range classNames {
		block, err := exportClass(className, sp.Classes[className], withProperties)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	return "erDiagram\n\n" + strings.Join(blocks, "\n\n"), nil
}

func exportClass(className string, class schemapack.ClassDefinition, withProperties bool) (string, error) {
	entity, err := exportEntity(className, class, withProperties)
	if err != nil {
		return "", err
	}
	if len(class.Relations) == 0 {
		return entity, nil
	}

	relationNames := make([]string, 0, len(class.Relations))
	for relationName := range class.Relations {
		relationNames = append(relationNames, relationName)
	}
	sort.Strings(relationNames)

	lines := make([]string, 0, len(relationNames))
	for _, relationName := range relationNames {
		lines = append(lines, exportRelation(className, relationName, class.Relations[relationName]))
	}
	return entity + "\n\n" + strings.Join(lines, "\n"), nil
}

func exportEntity(className string, class schemapack.ClassDefinition, withProperties bool) (string, error) {
	if !withProperties {
		return className + " {}", nil
	}
	if !class.Content.Inline() {
		return "", fmt.Errorf("class %q has an unresolved content schema reference; condense the schemapack first", className)
	}

	schema := class.Content.Schema
	properties, _ := schema["properties"].(map[string]any)

	required := map[string]bool{}
	if raw, ok := schema["required"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return "", fmt.Errorf("class %q: expected the schema's 'required' to be a list", className)
		}
		for _, name := range list {
			if s, ok := name.(string); ok {
				required[s] = true
			}
		}
	}

	var fields []string
	for _, propertyName := range sortedNames(properties) {
		propertyType, err := propertyType(className, propertyName, properties[propertyName])
		if err != nil {
			return "", err
		}
		tag := `"opt"`
		if required[propertyName] {
			tag = `"req"`
		}
		fields = append(fields, fmt.Sprintf("  %s %s %s", propertyType, propertyName, tag))
	}
	if additional, ok := schema["additionalProperties"].(bool); ok && additional {
		fields = append(fields, `  * * ""`)
	}

	if len(fields) == 0 {
		return className + " {}", nil
	}
	return className + " {\n" + strings.Join(fields, "\n") + "\n}", nil
}

// propertyType derives a display type from one property schema: the declared
// type, "enum" for enumerations, "array[elem]" for arrays, and "object" when
// nothing is declared.
func propertyType(className, propertyName string, property any) (string, error) {
	prop, ok := property.(map[string]any)
	if !ok {
		return "", fmt.Errorf("class %q: expected property %q to be a schema object", className, propertyName)
	}
	if _, ok := prop["enum"]; ok {
		return "enum", nil
	}
	propType, ok := prop["type"].(string)
	if !ok {
		return "object", nil
	}
	if propType == "array" {
		elemType := "object"
		if items, ok := prop["items"].(map[string]any); ok {
			if it, ok := items["type"].(string); ok {
				elemType = it
			}
		}
		return fmt.Sprintf("array[%s]", elemType), nil
	}
	return propType, nil
}

// exportRelation renders one relation line. Crow's-foot glyphs are derived
// from the mandatory/multiple matrix: the multiple flag picks many ("}"/"{")
// vs one ("|"), the mandatory flag picks one ("|") vs zero-or ("o").
func exportRelation(className, relationName string, relation schemapack.Relation) string {
	originMultiple := "|"
	if relation.Multiple.Origin {
		originMultiple = "}"
	}
	targetMultiple := "|"
	if relation.Multiple.Target {
		targetMultiple = "{"
	}
	originMandatory := "o"
	if relation.Mandatory.Origin {
		originMandatory = "|"
	}
	targetMandatory := "o"
	if relation.Mandatory.Target {
		targetMandatory = "|"
	}
	return fmt.Sprintf("%s %s%s--%s%s %s : \"%s.%s\"",
		className,
		originMultiple, originMandatory,
		targetMandatory, targetMultiple,
		relation.TargetClass,
		className, relationName,
	)
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
