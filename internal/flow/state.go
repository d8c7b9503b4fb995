package flow

import "slices"

// Step records the answer given at one node.
type Step struct {
	Node   NodeID `json:"node"`
	Answer string `json:"answer"`
}

// State is one participant's position in the flow plus the answers given so far.
// It is a value: Table.Step returns a new State and leaves its argument untouched,
// so the caller decides where it is persisted.
type State struct {
	Current NodeID `json:"current"`
	Steps   []Step `json:"steps"`
}

// Start returns a fresh traversal positioned at the table root.
func Start(t *Table) State {
	return State{Current: t.Root()}
}

// Done reports whether the traversal reached Terminal.
func (s State) Done() bool { return s.Current == Terminal }

// Answers returns the visited nodes and answers in visit order.
func (s State) Answers() []Step { return slices.Clone(s.Steps) }

// AnswerValues returns only the answer labels, in visit order.
func (s State) AnswerValues() []string {
	out := make([]string, len(s.Steps))
	for i, st := range s.Steps {
		out[i] = st.Answer
	}
	return out
}

// AnswerFor returns the answer recorded at node id.
func (s State) AnswerFor(id NodeID) (string, bool) {
	for _, st := range s.Steps {
		if st.Node == id {
			return st.Answer, true
		}
	}
	return "", false
}

// Step records answer at the current node and moves to the next one.
func (t *Table) Step(s State, answer string) (State, error) {
	if s.Done() {
		return s, ErrTraversalDone
	}
	next, err := t.Advance(s.Current, answer)
	if err != nil {
		return s, err
	}
	steps := make([]Step, len(s.Steps), len(s.Steps)+1)
	copy(steps, s.Steps)
	return State{
		Current: next,
		Steps:   append(steps, Step{Node: s.Current, Answer: answer}),
	}, nil
}
