package flow

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	return Default().Table
}

func TestAdvanceConfiguredTransitions(t *testing.T) {
	tbl := defaultTable(t)

	for _, n := range tbl.Nodes() {
		for answer, want := range n.Next {
			got, err := tbl.Advance(n.ID, answer)
			if err != nil {
				t.Fatalf("Advance(%q, %q): %v", n.ID, answer, err)
			}
			if got != want {
				t.Errorf("Advance(%q, %q) = %q, want %q", n.ID, answer, got, want)
			}
		}
	}
}

func TestAdvanceUnknownAnswerTerminates(t *testing.T) {
	tbl := defaultTable(t)

	for _, n := range tbl.Nodes() {
		for _, answer := range []string{"", "yes", "Sure", "<script>", "Strongly  Agree"} {
			if _, ok := n.Next[answer]; ok {
				continue
			}
			got, err := tbl.Advance(n.ID, answer)
			if err != nil {
				t.Fatalf("Advance(%q, %q): %v", n.ID, answer, err)
			}
			if got != Terminal {
				t.Errorf("Advance(%q, %q) = %q, want terminal", n.ID, answer, got)
			}
		}
	}
}

func TestAdvanceUnknownNode(t *testing.T) {
	tbl := defaultTable(t)

	for _, id := range []NodeID{"", "q9", Terminal} {
		_, err := tbl.Advance(id, "Yes")
		if !errors.Is(err, ErrUnknownNode) {
			t.Errorf("Advance(%q) error = %v, want ErrUnknownNode", id, err)
		}
	}
}

func TestDefaultTableShape(t *testing.T) {
	tbl := defaultTable(t)

	if tbl.Root() != "q1" {
		t.Errorf("root = %q, want q1", tbl.Root())
	}
	if tbl.Len() != 8 {
		t.Errorf("len = %d, want 8", tbl.Len())
	}
	if got := tbl.MaxDepth(); got != 4 {
		t.Errorf("MaxDepth = %d, want 4", got)
	}
	if got := len(tbl.Paths()); got != 25 {
		t.Errorf("len(Paths) = %d, want 25", got)
	}
}

func TestPathsEndAtTerminal(t *testing.T) {
	tbl := defaultTable(t)

	for _, p := range tbl.Paths() {
		if len(p) == 0 || len(p) > tbl.MaxDepth() {
			t.Fatalf("path length %d out of range: %v", len(p), p)
		}
		if p[0].Node != tbl.Root() {
			t.Errorf("path starts at %q, want root", p[0].Node)
		}
		s := Start(tbl)
		for _, st := range p {
			var err error
			s, err = tbl.Step(s, st.Answer)
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
		}
		if !s.Done() {
			t.Errorf("path %v did not reach terminal", p)
		}
	}
}

func TestRandomWalksTerminateWithinMaxDepth(t *testing.T) {
	tbl := defaultTable(t)
	rng := rand.New(rand.NewPCG(1, 2))
	junk := []string{"", "garbage", "YES"}

	for i := 0; i < 500; i++ {
		s := Start(tbl)
		for !s.Done() {
			n, ok := tbl.Node(s.Current)
			if !ok {
				t.Fatalf("state points at unknown node %q", s.Current)
			}
			answer := junk[rng.IntN(len(junk))]
			if rng.IntN(4) > 0 {
				answer = n.Options[rng.IntN(len(n.Options))]
			}
			var err error
			s, err = tbl.Step(s, answer)
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
			if len(s.Steps) > tbl.MaxDepth() {
				t.Fatalf("walk exceeded max depth: %v", s.Steps)
			}
		}
	}
}

func TestNodeReturnsCopy(t *testing.T) {
	tbl := defaultTable(t)

	n, ok := tbl.Node("q1")
	if !ok {
		t.Fatal("q1 missing")
	}
	n.Next["Agree"] = "q3_design"
	n.Options[0] = "changed"

	got, _ := tbl.Advance("q1", "Agree")
	if got != "q2_cs" {
		t.Errorf("table mutated through Node copy: Advance = %q", got)
	}
	again, _ := tbl.Node("q1")
	if again.Options[0] != "Strongly Disagree" {
		t.Errorf("options mutated through Node copy: %q", again.Options[0])
	}
}
