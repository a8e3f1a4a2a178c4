// Package graph detects cycles in predecessor chains. The deliverable
// dependency relation has out-degree at most one, so the graph is functional:
// following predecessors from any node yields a single chain that either
// terminates or loops.
package graph

// PredecessorFunc resolves a node's predecessor. The second return is false
// when the node has none.
type PredecessorFunc func(id string) (string, bool)

// DetectCycle follows the predecessor chain from start and returns the cycle
// as an ordered, inclusive id slice (first id repeated at the end) if the
// walk revisits a node already on the current path. Returns nil when the
// chain terminates.
func DetectCycle(start string, pred PredecessorFunc) []string {
	return detectCycle(start, pred, nil)
}

func detectCycle(start string, pred PredecessorFunc, explored map[string]bool) []string {
	index := make(map[string]int)
	var path []string

	node := start
	for {
		if explored[node] {
			return nil
		}
		if at, seen := index[node]; seen {
			cycle := append([]string{}, path[at:]...)
			return append(cycle, node)
		}
		index[node] = len(path)
		path = append(path, node)

		next, ok := pred(node)
		if !ok {
			return nil
		}
		node = next
	}
}

// CheckAll walks every node once and returns the first cycle found, or nil.
// Fully explored chains are memoized, so a pre-save sweep over the whole
// deliverable set stays O(V) rather than O(V²).
func CheckAll(ids []string, pred PredecessorFunc) []string {
	explored := make(map[string]bool, len(ids))
	for _, id := range ids {
		if explored[id] {
			continue
		}
		if cycle := detectCycle(id, pred, explored); cycle != nil {
			return cycle
		}
		// Chain terminated; everything reachable from id is acyclic.
		markExplored(id, pred, explored)
	}
	return nil
}

func markExplored(start string, pred PredecessorFunc, explored map[string]bool) {
	node := start
	for !explored[node] {
		explored[node] = true
		next, ok := pred(node)
		if !ok {
			return
		}
		node = next
	}
}
