package schemapack

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// DataPackVersion is the version of the datapack format understood by this
// package. A document's top-level `datapack` field must match it.
const DataPackVersion = "0.3.0"

// DataPack holds resources conforming to a schemapack, grouped by class name
// and indexed by resource id. Every class of the paired schemapack must be
// present as a key, possibly with an empty resource mapping.
type DataPack struct {
	Version   string                         `yaml:"datapack"`
	Resources map[string]map[string]Resource `yaml:"resources"`

	// RootClass and RootResource mark a rooted datapack: one whose resources
	// are exactly the transitive closure reachable from the root. Both must be
	// set or both empty.
	RootClass    string `yaml:"rootClass,omitempty"`
	RootResource string `yaml:"rootResource,omitempty"`
}

// Resource is one instance of a class: a content mapping plus the outgoing
// relation edges to other resources.
type Resource struct {
	Content   map[string]any              `yaml:"content"`
	Relations map[string]RelationInstance `yaml:"relations,omitempty"`
}

// RelationInstance is one concrete edge set of a resource for a named
// relation. TargetIDs is the normalized target list; Multiple records whether
// the wire shape was a list (true) or a scalar/null (false), which is what the
// target-side plurality check compares against the schema's multiple.target.
type RelationInstance struct {
	TargetClass string
	TargetIDs   []string
	Multiple    bool
}

// TargetIDSet returns the target ids as a set, regardless of wire shape.
func (ri RelationInstance) TargetIDSet() map[string]bool {
	set := make(map[string]bool, len(ri.TargetIDs))
	for _, id := range ri.TargetIDs {
		set[id] = true
	}
	return set
}

// UnmarshalYAML decodes the wire form of a relation instance:
//
//	targetClass: Sample
//	targetResources: [sample1, sample2]  # or a single id, or null
//
// Duplicate ids in a target list are rejected outright.
func (ri *RelationInstance) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return structuralf("a relation instance must be a mapping with targetClass and targetResources")
	}
	var targets *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "targetClass":
			if err := value.Decode(&ri.TargetClass); err != nil {
				return structuralf("targetClass must be a string")
			}
		case "targetResources":
			targets = value
		default:
			return structuralf("unknown key %q in relation instance", key)
		}
	}
	if ri.TargetClass == "" {
		return structuralf("a relation instance must state its targetClass")
	}
	if targets == nil {
		return nil
	}

	switch {
	case targets.Kind == yaml.ScalarNode && targets.Tag == "!!null":
		// optional single target, absent
	case targets.Kind == yaml.ScalarNode:
		var id string
		if err := targets.Decode(&id); err != nil {
			return structuralf("targetResources must be an id, a list of ids, or null")
		}
		ri.TargetIDs = []string{id}
	case targets.Kind == yaml.SequenceNode:
		ri.Multiple = true
		if err := targets.Decode(&ri.TargetIDs); err != nil {
			return structuralf("targetResources must be an id, a list of ids, or null")
		}
		seen := make(map[string]bool, len(ri.TargetIDs))
		for _, id := range ri.TargetIDs {
			if seen[id] {
				return structuralf("duplicate target id %q in targetResources", id)
			}
			seen[id] = true
		}
	default:
		return structuralf("targetResources must be an id, a list of ids, or null")
	}
	return nil
}

// check verifies the document-local structural invariants of a datapack.
// Everything involving the paired schemapack is left to Validate.
func (dp *DataPack) check() error {
	if dp.Version != DataPackVersion {
		if dp.Version == "" {
			return structuralf("missing a `datapack` field; is this a datapack definition?")
		}
		return structuralf("unsupported datapack version %q, supported: %s", dp.Version, DataPackVersion)
	}
	if dp.Resources == nil {
		return structuralf("a datapack must have a resources mapping")
	}
	if (dp.RootClass == "") != (dp.RootResource == "") {
		return structuralf("rootClass and rootResource must either both be present or both be absent")
	}
	for _, className := range dp.ClassNames() {
		for _, id := range dp.ResourceIDs(className) {
			if dp.Resources[className][id].Content == nil {
				return structuralf("resource %q of class %q has no content", id, className)
			}
		}
	}
	return nil
}

// ClassNames returns the class slots of the datapack in sorted order.
func (dp *DataPack) ClassNames() []string {
	return sortedKeys(dp.Resources)
}

// ResourceIDs returns the sorted resource ids of one class slot.
func (dp *DataPack) ResourceIDs(className string) []string {
	ids := make([]string, 0, len(dp.Resources[className]))
	for id := range dp.Resources[className] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// clone copies the document and its two mapping levels; resources themselves
// are shared since they are never mutated.
func (dp *DataPack) clone() *DataPack {
	out := *dp
	out.Resources = make(map[string]map[string]Resource, len(dp.Resources))
	for className, resources := range dp.Resources {
		slot := make(map[string]Resource, len(resources))
		for id, resource := range resources {
			slot[id] = resource
		}
		out.Resources[className] = slot
	}
	return &out
}
