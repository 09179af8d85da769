package schemapack

import (
	"sort"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format selects the serialization format for document dumps.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// DumpSchemaPack serializes a schemapack definition. Output is deterministic:
// mappings are emitted with sorted keys in both formats.
func DumpSchemaPack(sp *SchemaPack, format Format) ([]byte, error) {
	return marshal(schemaPackTree(sp), format)
}

// DumpDataPack serializes a datapack definition. Target-id lists are emitted
// sorted so repeated dumps of equal documents are byte-identical.
func DumpDataPack(dp *DataPack, format Format) ([]byte, error) {
	return marshal(dataPackTree(dp), format)
}

func marshal(tree map[string]any, format Format) ([]byte, error) {
	if format == FormatJSON {
		out, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	}
	return yaml.Marshal(tree)
}

func schemaPackTree(sp *SchemaPack) map[string]any {
	classes := make(map[string]any, len(sp.Classes))
	for className, class := range sp.Classes {
		classes[className] = classTree(class)
	}
	tree := map[string]any{
		"schemapack": sp.Version,
		"classes":    classes,
	}
	if sp.Description != "" {
		tree["description"] = sp.Description
	}
	if sp.RootClass != "" {
		tree["rootClass"] = sp.RootClass
	}
	return tree
}

func classTree(class ClassDefinition) map[string]any {
	id := map[string]any{"propertyName": class.ID.PropertyName}
	if class.ID.Description != "" {
		id["description"] = class.ID.Description
	}

	var content any = class.Content.Path
	if class.Content.Inline() {
		content = class.Content.Schema
	}

	tree := map[string]any{
		"id":      id,
		"content": content,
	}
	if class.Description != "" {
		tree["description"] = class.Description
	}
	if len(class.Relations) > 0 {
		relations := make(map[string]any, len(class.Relations))
		for relationName, relation := range class.Relations {
			relations[relationName] = relationTree(relation)
		}
		tree["relations"] = relations
	}
	return tree
}

func relationTree(relation Relation) map[string]any {
	tree := map[string]any{
		"targetClass": relation.TargetClass,
		"mandatory": map[string]any{
			"origin": relation.Mandatory.Origin,
			"target": relation.Mandatory.Target,
		},
		"multiple": map[string]any{
			"origin": relation.Multiple.Origin,
			"target": relation.Multiple.Target,
		},
	}
	if relation.Description != "" {
		tree["description"] = relation.Description
	}
	return tree
}

func dataPackTree(dp *DataPack) map[string]any {
	resources := make(map[string]any, len(dp.Resources))
	for className, classResources := range dp.Resources {
		slot := make(map[string]any, len(classResources))
		for id, resource := range classResources {
			slot[id] = resourceTree(resource)
		}
		resources[className] = slot
	}
	tree := map[string]any{
		"datapack":  dp.Version,
		"resources": resources,
	}
	if dp.RootClass != "" {
		tree["rootClass"] = dp.RootClass
		tree["rootResource"] = dp.RootResource
	}
	return tree
}

func resourceTree(resource Resource) map[string]any {
	tree := map[string]any{"content": resource.Content}
	if len(resource.Relations) > 0 {
		relations := make(map[string]any, len(resource.Relations))
		for relationName, instance := range resource.Relations {
			relations[relationName] = relationInstanceTree(instance)
		}
		tree["relations"] = relations
	}
	return tree
}

func relationInstanceTree(instance RelationInstance) map[string]any {
	var targets any
	if instance.Multiple {
		ids := append([]string(nil), instance.TargetIDs...)
		sort.Strings(ids)
		targets = ids
	} else if len(instance.TargetIDs) == 1 {
		targets = instance.TargetIDs[0]
	}
	return map[string]any{
		"targetClass":     instance.TargetClass,
		"targetResources": targets,
	}
}
