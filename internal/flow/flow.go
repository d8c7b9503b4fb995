// Package flow implements the adaptive question flow: a fixed, validated tree of
// question nodes and the navigator that moves a participant from one node to the
// next based on the answer they picked.
package flow

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// NodeID identifies a question node.
type NodeID string

// Terminal marks the end of a traversal. It is never a valid node ID.
const Terminal NodeID = "end"

// Response log columns. Answers are logged under their node ID, so a node
// may not share a name with these.
const (
	ColumnName      = "student_name"
	ColumnEmail     = "student_email"
	ColumnTimestamp = "timestamp"
	ColumnField     = "predicted_field"
)

// LogColumns lists the fixed response log columns.
func LogColumns() []string {
	return []string{ColumnName, ColumnEmail, ColumnTimestamp, ColumnField}
}

// IsReserved reports whether id is the terminal marker or a fixed log column.
func IsReserved(id NodeID) bool {
	return id == Terminal || slices.Contains(LogColumns(), string(id))
}

var (
	// ErrUnknownNode is returned when the caller asks to advance from a node
	// that does not exist in the table. It means the stored traversal state is corrupt.
	ErrUnknownNode = errors.New("unknown flow node")
	// ErrTraversalDone is returned when stepping a traversal that already reached Terminal.
	ErrTraversalDone = errors.New("traversal already complete")
	// ErrInvalidTable wraps every structural problem found while building a table.
	ErrInvalidTable = errors.New("invalid flow table")
)

// Node is a single question with its answer options and transitions.
type Node struct {
	ID      NodeID            `yaml:"id" json:"id"`
	Prompt  string            `yaml:"text" json:"text"`
	Options []string          `yaml:"options" json:"options"`
	Next    map[string]NodeID `yaml:"next" json:"next"`
}

func (n Node) clone() Node {
	n.Options = slices.Clone(n.Options)
	n.Next = maps.Clone(n.Next)
	return n
}

// Table is an immutable, validated question graph.
type Table struct {
	root  NodeID
	nodes []Node
	byID  map[NodeID]int
	depth map[NodeID]int
}

// NewTable validates the nodes and builds a table rooted at root.
// All structural problems are reported together.
func NewTable(root NodeID, nodes []Node) (*Table, error) {
	if err := validateNodes(root, nodes); err != nil {
		return nil, err
	}

	t := &Table{
		root:  root,
		nodes: make([]Node, len(nodes)),
		byID:  make(map[NodeID]int, len(nodes)),
		depth: make(map[NodeID]int, len(nodes)),
	}
	for i, n := range nodes {
		t.nodes[i] = n.clone()
		t.byID[n.ID] = i
	}
	t.computeDepth(root)
	return t, nil
}

// Root returns the node every traversal starts from.
func (t *Table) Root() NodeID { return t.root }

// Len returns the number of nodes.
func (t *Table) Len() int { return len(t.nodes) }

// Node returns a copy of the node with the given ID.
func (t *Table) Node(id NodeID) (Node, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Node{}, false
	}
	return t.nodes[i].clone(), true
}

// Nodes returns copies of all nodes in declaration order.
func (t *Table) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.clone()
	}
	return out
}

// Advance returns the node that follows current when answer is chosen.
// Answers without a transition end the traversal.
func (t *Table) Advance(current NodeID, answer string) (NodeID, error) {
	i, ok := t.byID[current]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownNode, current)
	}
	next, ok := t.nodes[i].Next[answer]
	if !ok {
		return Terminal, nil
	}
	return next, nil
}

// MaxDepth is the number of answers on the longest path from the root to Terminal.
func (t *Table) MaxDepth() int { return t.depth[t.root] }

// computeDepth fills the longest-remaining-path memo. The graph is already known
// to be acyclic, so plain recursion terminates.
func (t *Table) computeDepth(id NodeID) int {
	if id == Terminal {
		return 0
	}
	if d, ok := t.depth[id]; ok {
		return d
	}
	best := 0
	for _, next := range t.nodes[t.byID[id]].Next {
		best = max(best, t.computeDepth(next))
	}
	t.depth[id] = best + 1
	return best + 1
}

// Path is one complete root-to-Terminal sequence of answers.
type Path []Step

// Paths enumerates every path through the table, following options in declared order.
func (t *Table) Paths() []Path {
	var out []Path
	var walk func(id NodeID, prefix Path)
	walk = func(id NodeID, prefix Path) {
		if id == Terminal {
			out = append(out, slices.Clone(prefix))
			return
		}
		n := t.nodes[t.byID[id]]
		for _, opt := range n.Options {
			walk(n.Next[opt], append(prefix, Step{Node: id, Answer: opt}))
		}
	}
	walk(t.root, nil)
	return out
}
