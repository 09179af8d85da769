// Package graph provides the traversal and indexing primitives shared by the
// validation and isolation engines: a generic transitive-closure walk that is
// instantiated once for class graphs and once for resource graphs, and the
// reverse adjacency index that makes origin-side relation checks linear in the
// number of edges.
package graph

// Closure returns the set of nodes reachable from start by following the
// outgoing edges produced by out, including start itself. The visited set
// guarantees termination on cycles and that every node is expanded exactly
// once, keeping the walk linear in edge count. The result is independent of
// traversal order.
func Closure[N comparable](start N, out func(N) []N) map[N]bool {
	visited := map[N]bool{start: true}
	queue := []N{start}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range out(node) {
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}

// ResourceRef identifies a resource by class and id.
type ResourceRef struct {
	Class string
	ID    string
}

// ReverseKey addresses all edges of one relation arriving at one target
// resource. OriginClass is part of the key because relation names are scoped
// per origin class.
type ReverseKey struct {
	TargetClass string
	TargetID    string
	OriginClass string
	Relation    string
}

// ReverseIndex maps each (target, origin class, relation) combination to the
// ids of the origin resources referencing that target. It is built once per
// validation call from the forward edges and answers origin-side mandatory and
// multiple checks without re-scanning the document.
type ReverseIndex map[ReverseKey][]string

// Add records one forward edge in reverse direction.
func (ix ReverseIndex) Add(originClass, originID, relation, targetClass, targetID string) {
	key := ReverseKey{
		TargetClass: targetClass,
		TargetID:    targetID,
		OriginClass: originClass,
		Relation:    relation,
	}
	ix[key] = append(ix[key], originID)
}

// Origins returns the ids of origin resources of originClass referencing the
// given target through the named relation.
func (ix ReverseIndex) Origins(targetClass, targetID, originClass, relation string) []string {
	return ix[ReverseKey{
		TargetClass: targetClass,
		TargetID:    targetID,
		OriginClass: originClass,
		Relation:    relation,
	}]
}
