package flow

import (
	"fmt"
	"slices"
	"strings"
)

// validateNodes performs all structural checks on a node set.
// Returns a combined error describing every problem found, or nil if valid.
func validateNodes(root NodeID, nodes []Node) error {
	var errs []string

	idSet := make(map[NodeID]bool, len(nodes))
	for _, n := range nodes {
		switch {
		case n.ID == "":
			errs = append(errs, "node with empty ID")
		case n.ID == Terminal:
			errs = append(errs, fmt.Sprintf("node ID %q is reserved for the terminal marker", Terminal))
		case IsReserved(n.ID):
			errs = append(errs, fmt.Sprintf("node ID %q is reserved for a response log column", n.ID))
		case idSet[n.ID]:
			errs = append(errs, fmt.Sprintf("duplicate node ID: %q", n.ID))
		}
		idSet[n.ID] = true
	}

	if root == "" || root == Terminal {
		errs = append(errs, fmt.Sprintf("invalid root %q", root))
	} else if !idSet[root] {
		errs = append(errs, fmt.Sprintf("root %q is not a defined node", root))
	}

	for _, n := range nodes {
		if len(n.Options) == 0 {
			errs = append(errs, fmt.Sprintf("node %q has no answer options", n.ID))
		}
		seen := make(map[string]bool, len(n.Options))
		for _, opt := range n.Options {
			if seen[opt] {
				errs = append(errs, fmt.Sprintf("node %q lists option %q twice", n.ID, opt))
			}
			seen[opt] = true
			if _, ok := n.Next[opt]; !ok {
				errs = append(errs, fmt.Sprintf("node %q option %q has no transition", n.ID, opt))
			}
		}
		for _, answer := range sortedKeys(n.Next) {
			target := n.Next[answer]
			if !seen[answer] {
				errs = append(errs, fmt.Sprintf("node %q has a transition for undeclared option %q", n.ID, answer))
			}
			if target != Terminal && !idSet[target] {
				errs = append(errs, fmt.Sprintf("node %q option %q references nonexistent node %q", n.ID, answer, target))
			}
		}
	}

	// Cycle check with Kahn's algorithm over edges between real nodes.
	inDegree := make(map[NodeID]int, len(nodes))
	adj := make(map[NodeID][]NodeID, len(nodes))
	for _, n := range nodes {
		if _, ok := inDegree[n.ID]; !ok {
			inDegree[n.ID] = 0
		}
		targets := make(map[NodeID]bool)
		for _, target := range n.Next {
			if target == Terminal || !idSet[target] || targets[target] {
				continue
			}
			targets[target] = true
			adj[n.ID] = append(adj[n.ID], target)
			inDegree[target]++
		}
	}

	var queue []NodeID
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range adj[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited < len(inDegree) {
		var cycle []string
		for _, n := range nodes {
			if inDegree[n.ID] > 0 {
				cycle = append(cycle, string(n.ID))
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving nodes: %s", strings.Join(cycle, ", ")))
	}

	// Every node must be reachable from the root.
	if idSet[root] {
		reached := map[NodeID]bool{root: true}
		stack := []NodeID{root}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range adj[id] {
				if !reached[next] {
					reached[next] = true
					stack = append(stack, next)
				}
			}
		}
		for _, n := range nodes {
			if n.ID != "" && !reached[n.ID] {
				errs = append(errs, fmt.Sprintf("node %q is unreachable from root %q", n.ID, root))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidTable, strings.Join(errs, "\n  "))
	}
	return nil
}

func sortedKeys(m map[string]NodeID) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
