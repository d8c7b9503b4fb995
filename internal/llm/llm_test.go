package llm

import (
	"reflect"
	"testing"
)

func TestParseTokens(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"plain", `{"tokens": ["Math", "100", "85"]}`, []string{"Math", "100", "85"}, false},
		{"fenced", "```json\n{\"tokens\": [\"Science\", \"90\"]}\n```", []string{"Science", "90"}, false},
		{"numbers", `{"tokens": ["Math", 100, 85]}`, []string{"Math", "100", "85"}, false},
		{"drops blanks and nulls", `{"tokens": [" ", "Art", null, ""]}`, []string{"Art"}, false},
		{"empty list", `{"tokens": []}`, []string{}, false},
		{"missing key", `{"words": ["a"]}`, []string{}, false},
		{"not json", `Math 100 85`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTokens(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTokens() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTokens() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("http://localhost:11434/v1", "ollama", "", ""); err == nil {
		t.Error("expected error for empty model")
	}
	if _, err := New("", "key", "llava", "strict"); err == nil {
		t.Error("expected error for invalid variant")
	}
	c, err := New("", "key", "llava", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Model() != "llava" {
		t.Errorf("Model() = %q", c.Model())
	}
}
