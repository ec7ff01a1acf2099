package fam

import "fmt"

// evaluate computes the value of every root in roots by: (1) collecting
// the reachable subgraph, (2) Kahn-sorting it, (3) reducing in order.
// Returns a map from NodeId to its computed value.
func evaluate(store *NodeStore, roots []NodeId) (map[NodeId]float64, error) {
	reachable := reachableSet(store, roots)

	indegree := make(map[NodeId]int, len(reachable))
	parentsOf := make(map[NodeId][]NodeId)
	for id := range reachable {
		n := store.Get(id)
		if n.Kind == NodeOp {
			indegree[id] = 2
			parentsOf[n.Left] = append(parentsOf[n.Left], id)
			parentsOf[n.Right] = append(parentsOf[n.Right], id)
		} else {
			indegree[id] = 0
		}
	}

	queue := make([]NodeId, 0, len(reachable))
	for id := range reachable {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	// Deterministic tie-break: ascending NodeId.
	sortNodeIds(queue)

	order := make([]NodeId, 0, len(reachable))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)

		newlyReady := make([]NodeId, 0)
		for _, d := range parentsOf[u] {
			indegree[d]--
			if indegree[d] == 0 {
				newlyReady = append(newlyReady, d)
			}
		}
		sortNodeIds(newlyReady)
		queue = append(queue, newlyReady...)
		sortNodeIds(queue)
	}

	if len(order) != len(reachable) {
		return nil, fmt.Errorf("%w: evaluator found a residual cycle in the reachable subgraph", ErrCycle)
	}

	values := make(map[NodeId]float64, len(reachable))
	for _, id := range order {
		n := store.Get(id)
		if n.Kind == NodeLeaf {
			values[id] = n.Value
			continue
		}
		l := values[n.Left]
		r := values[n.Right]
		v, err := applyOp(n.BinOp, l, r, n.Label, id)
		if err != nil {
			return nil, err
		}
		values[id] = v
	}

	return values, nil
}

func reachableSet(store *NodeStore, roots []NodeId) map[NodeId]bool {
	seen := make(map[NodeId]bool)
	stack := append([]NodeId(nil), roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		n := store.Get(id)
		if n.Kind == NodeOp {
			stack = append(stack, n.Left, n.Right)
		}
	}
	return seen
}

// applyOp implements the arithmetic semantics: IEEE-754 double, DIV by
// exactly 0.0 fails, ADD/SUB/MUL never fail.
func applyOp(op Op, l, r float64, label string, id NodeId) (float64, error) {
	switch op {
	case Add:
		return l + r, nil
	case Sub:
		return l - r, nil
	case Mul:
		return l * r, nil
	case Div:
		if r == 0.0 {
			return 0, errDivisionByZero(label, id)
		}
		return l / r, nil
	default:
		return 0, fmt.Errorf("unknown op %q at node %d (%s)", op, id, label)
	}
}

// sortNodeIds sorts in place, ascending. NodeId counts rarely exceed a few
// hundred per compute, so a plain insertion sort keeps this dependency-free
// and avoids importing sort for a handful of int comparisons repeated in a
// hot loop.
func sortNodeIds(ids []NodeId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
