package flow

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const smallYAML = `
version: 1
root: a
nodes:
  - id: a
    text: First?
    options: ["Yes", "No"]
    next: {"Yes": b, "No": end}
  - id: b
    text: Second?
    options: ["Yes", "No"]
    next: {"Yes": end, "No": end}
classifier:
  fallback: other
  rules:
    - category: yes-person
      keywords: ["yes"]
`

func TestParseYAML(t *testing.T) {
	def, err := Parse([]byte(smallYAML), ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.Table.Root() != "a" || def.Table.Len() != 2 {
		t.Errorf("unexpected table: root=%q len=%d", def.Table.Root(), def.Table.Len())
	}
	if got := def.Classifier.Classify([]string{"Yes"}); got != "yes-person" {
		t.Errorf("Classify = %q", got)
	}
	if len(def.Hash) != 64 {
		t.Errorf("hash length = %d", len(def.Hash))
	}
}

func TestParseJSONWithoutClassifierUsesDefault(t *testing.T) {
	data := `{"version":1,"root":"a","nodes":[{"id":"a","text":"A?","options":["Yes"],"next":{"Yes":"end"}}]}`
	def, err := Parse([]byte(data), ".json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.Classifier.Fallback != FallbackCategory {
		t.Errorf("fallback = %q", def.Classifier.Fallback)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("root: a\nnodez: []\n"), ".yaml")
	if err == nil || !strings.Contains(err.Error(), "parse yaml") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestParseRejectsCyclicFlow(t *testing.T) {
	data := strings.Replace(smallYAML, `{"Yes": end, "No": end}`, `{"Yes": a, "No": end}`, 1)
	_, err := Parse([]byte(data), ".yaml")
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected cycle error, got %v", err)
	}
}

func TestParseRejectsLogColumnNodeID(t *testing.T) {
	data := `
root: timestamp
nodes:
  - id: timestamp
    text: When?
    options: ["Now"]
    next: {"Now": end}
`
	_, err := Parse([]byte(data), ".yaml")
	if !errors.Is(err, ErrInvalidTable) || !strings.Contains(err.Error(), "response log column") {
		t.Errorf("expected reserved column error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yml")
	if err := os.WriteFile(path, []byte(smallYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	def, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if def.Table != Default().Table {
		t.Error("empty path should return the embedded default")
	}
}
