package reflow

import (
	"github.com/compozy/reflow/engine/core"
)

// Edge is a directed parent -> child dependency: child depends on parent.
type Edge struct {
	Parent core.ID
	Child  core.ID
}

// topoSort implements Kahn's algorithm over nodes and edges. Determinism
// (§9): among simultaneously ready nodes, processing order follows original
// insertion order in nodes (FIFO over the zero-in-degree set). Edges
// referencing ids outside nodes are silently ignored. Returns
// CircularDependency, carrying the residual positive-in-degree ids, when
// fewer nodes are emitted than were given.
func topoSort(nodes []core.ID, edges []Edge) ([]core.ID, error) {
	index := make(map[core.ID]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	inDegree := make(map[core.ID]int, len(nodes))
	children := make(map[core.ID][]core.ID, len(nodes))
	for _, n := range nodes {
		inDegree[n] = 0
	}
	for _, e := range edges {
		if _, ok := index[e.Parent]; !ok {
			continue
		}
		if _, ok := index[e.Child]; !ok {
			continue
		}
		inDegree[e.Child]++
		children[e.Parent] = append(children[e.Parent], e.Child)
	}

	queue := make([]core.ID, 0, len(nodes))
	for _, n := range nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]core.ID, 0, len(nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, c := range children[n] {
			inDegree[c]--
			if inDegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(order) < len(nodes) {
		var residual []core.ID
		for _, n := range nodes {
			if inDegree[n] > 0 {
				residual = append(residual, n)
			}
		}
		// topoSort only ever sees opaque ids; it reports them as-is here.
		// engine.topoOrder rewrites this into the offending work orders'
		// human-readable Number before it reaches a caller (§7).
		labels := make([]string, len(residual))
		for i, id := range residual {
			labels[i] = id.String()
		}
		return nil, core.NewError(
			errCircularDependency(labels),
			core.CodeCircularDependency,
			map[string]any{"residual": residual},
		)
	}
	return order, nil
}
