package schemapack

import (
	"github.com/packspec/schemapack/internal/graph"
)

// IsolateResource extracts the rooted sub-document reachable from the given
// resource: a new datapack containing the root, every resource transitively
// referenced by it, and nothing else, with the root markers set to the
// starting point. The input is assumed to have been validated; relation
// instances of visited resources are copied unchanged, since every one of
// their targets is itself in the closure by construction of the traversal.
//
// The result is not guaranteed to validate against the original, non-rooted
// schemapack: origin-side mandatory/multiple invariants that held over the
// full graph may no longer hold over the subset. It is guaranteed to validate
// against the correspondingly rooted schemapack (see IsolateClass), whose
// origin-side checks are scoped to the same closure.
func IsolateResource(sp *SchemaPack, dp *DataPack, rootClass, rootResourceID string) (*DataPack, error) {
	if _, ok := sp.Classes[rootClass]; !ok {
		return nil, &RootNotFoundError{Class: rootClass}
	}
	instances := buildInstanceGraph(dp)
	root := graph.ResourceRef{Class: rootClass, ID: rootResourceID}
	if !instances.exists(root) {
		return nil, &RootNotFoundError{Class: rootClass, Resource: rootResourceID}
	}

	visited := instances.closure(rootClass, rootResourceID)

	// Class slots are restricted to the class closure from the root class so
	// the result lines up with the correspondingly rooted schemapack: classes
	// outside that closure can never hold visited resources, and keeping
	// their empty slots would make the pair inconsistent.
	classes := classClosure(sp, rootClass)

	out := dp.clone()
	for className := range out.Resources {
		if !classes[className] {
			delete(out.Resources, className)
		}
	}
	for className := range classes {
		slot := make(map[string]Resource)
		for id, resource := range dp.Resources[className] {
			if visited[graph.ResourceRef{Class: className, ID: id}] {
				slot[id] = resource
			}
		}
		out.Resources[className] = slot
	}
	out.RootClass = rootClass
	out.RootResource = rootResourceID
	return out, nil
}

// IsolateClass extracts the rooted sub-schema reachable from the given class:
// a new schemapack containing only the classes in the closure, rooted at the
// starting class. Relations never have to be filtered because the closure
// follows every relation's target class. The input must be condensed so the
// emitted document is self-contained.
func IsolateClass(sp *SchemaPack, rootClass string) (*SchemaPack, error) {
	if _, ok := sp.Classes[rootClass]; !ok {
		return nil, &RootNotFoundError{Class: rootClass}
	}
	for _, className := range sortedKeys(sp.Classes) {
		if !sp.Classes[className].Content.Inline() {
			return nil, structuralf("class %q has an unresolved content schema reference; condense the schemapack first", className)
		}
	}

	visited := classClosure(sp, rootClass)

	out := sp.clone()
	for className := range out.Classes {
		if !visited[className] {
			delete(out.Classes, className)
		}
	}
	out.RootClass = rootClass
	return out, nil
}

// Isolate roots both documents at once: the schemapack at rootClass and the
// datapack at the given resource of that class. The two outputs are
// consistent with each other, i.e. the rooted datapack validates against the
// rooted schemapack.
func Isolate(sp *SchemaPack, dp *DataPack, rootClass, rootResourceID string) (*SchemaPack, *DataPack, error) {
	rootedSchema, err := IsolateClass(sp, rootClass)
	if err != nil {
		return nil, nil, err
	}
	rootedData, err := IsolateResource(sp, dp, rootClass, rootResourceID)
	if err != nil {
		return nil, nil, err
	}
	return rootedSchema, rootedData, nil
}
