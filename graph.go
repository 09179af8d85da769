package schemapack

import (
	"sort"

	"github.com/packspec/schemapack/internal/graph"
)

// instanceGraph is the datapack viewed as a directed resource graph: O(1)
// resource lookup by (class, id) plus the reverse adjacency index over all
// forward edges. It is built once per validation or isolation call.
type instanceGraph struct {
	data    *DataPack
	reverse graph.ReverseIndex
}

func buildInstanceGraph(dp *DataPack) *instanceGraph {
	reverse := graph.ReverseIndex{}
	for className, classResources := range dp.Resources {
		for id, resource := range classResources {
			for relationName, instance := range resource.Relations {
				for _, targetID := range instance.TargetIDs {
					reverse.Add(className, id, relationName, instance.TargetClass, targetID)
				}
			}
		}
	}
	return &instanceGraph{data: dp, reverse: reverse}
}

func (g *instanceGraph) exists(ref graph.ResourceRef) bool {
	_, ok := g.data.Resources[ref.Class][ref.ID]
	return ok
}

// outgoing returns the direct targets of a resource. Targets that do not
// exist in the document are still returned; callers decide whether dangling
// references matter (the validator reports them, the closure skips expanding
// them because the missing node has no outgoing edges of its own).
func (g *instanceGraph) outgoing(ref graph.ResourceRef) []graph.ResourceRef {
	resource, ok := g.data.Resources[ref.Class][ref.ID]
	if !ok {
		return nil
	}
	var targets []graph.ResourceRef
	for _, relationName := range sortedKeys(resource.Relations) {
		instance := resource.Relations[relationName]
		ids := append([]string(nil), instance.TargetIDs...)
		sort.Strings(ids)
		for _, targetID := range ids {
			targets = append(targets, graph.ResourceRef{Class: instance.TargetClass, ID: targetID})
		}
	}
	return targets
}

// closure computes the forward transitive closure from the given root.
func (g *instanceGraph) closure(rootClass, rootID string) map[graph.ResourceRef]bool {
	return graph.Closure(graph.ResourceRef{Class: rootClass, ID: rootID}, g.outgoing)
}

// classClosure computes the set of classes reachable from rootClass by
// following relation target classes.
func classClosure(sp *SchemaPack, rootClass string) map[string]bool {
	return graph.Closure(rootClass, func(className string) []string {
		class := sp.Classes[className]
		var targets []string
		for _, relationName := range sortedKeys(class.Relations) {
			targets = append(targets, class.Relations[relationName].TargetClass)
		}
		return targets
	})
}
