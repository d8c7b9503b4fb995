package flow

import (
	"errors"
	"testing"
)

func TestStepDoesNotMutateInput(t *testing.T) {
	tbl := defaultTable(t)

	s0 := Start(tbl)
	s1, err := tbl.Step(s0, "Agree")
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	s2a, err := tbl.Step(s1, "Yes")
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	s2b, err := tbl.Step(s1, "No")
	if err != nil {
		t.Fatalf("Step: %v", err)
	}

	if len(s0.Steps) != 0 || s0.Current != "q1" {
		t.Errorf("initial state mutated: %+v", s0)
	}
	if len(s1.Steps) != 1 || s1.Current != "q2_cs" {
		t.Errorf("s1 = %+v", s1)
	}
	if s2a.Current != "q3_ai" || s2b.Current != "q2_creative" {
		t.Errorf("branches: %q, %q", s2a.Current, s2b.Current)
	}
	if a, _ := s2a.AnswerFor("q2_cs"); a != "Yes" {
		t.Errorf("s2a q2_cs answer = %q", a)
	}
	if a, _ := s2b.AnswerFor("q2_cs"); a != "No" {
		t.Errorf("s2b q2_cs answer = %q", a)
	}
}

func TestStepRecordsInvalidAnswerAndTerminates(t *testing.T) {
	tbl := defaultTable(t)

	s, err := tbl.Step(Start(tbl), "tampered")
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !s.Done() {
		t.Fatalf("expected terminal state, got %q", s.Current)
	}
	if a, ok := s.AnswerFor("q1"); !ok || a != "tampered" {
		t.Errorf("AnswerFor(q1) = %q, %v", a, ok)
	}

	if _, err := tbl.Step(s, "Yes"); !errors.Is(err, ErrTraversalDone) {
		t.Errorf("Step after terminal: %v, want ErrTraversalDone", err)
	}
}

func TestStepCorruptState(t *testing.T) {
	tbl := defaultTable(t)

	_, err := tbl.Step(State{Current: "q42"}, "Yes")
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Step on corrupt state: %v, want ErrUnknownNode", err)
	}
}

func TestAnswerValuesOrder(t *testing.T) {
	s := State{Steps: []Step{{"q1", "Neutral"}, {"q2_business", "Yes"}, {"q3_leadership", "No"}}}
	got := s.AnswerValues()
	want := []string{"Neutral", "Yes", "No"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AnswerValues()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
