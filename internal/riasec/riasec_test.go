package riasec

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestLoadBankDefaults(t *testing.T) {
	b, err := LoadBank("", "")
	if err != nil {
		t.Fatalf("LoadBank: %v", err)
	}
	if b.Len() != 30 {
		t.Errorf("Len() = %d, want 30", b.Len())
	}
	perCat := map[string]int{}
	for _, q := range b.Questions {
		perCat[q.Category]++
	}
	for _, cat := range []string{"Realistic", "Investigative", "Artistic", "Social", "Enterprising", "Conventional"} {
		if perCat[cat] != 5 {
			t.Errorf("category %s has %d questions, want 5", cat, perCat[cat])
		}
		if len(b.CareersFor([]string{cat})) != 1 {
			t.Errorf("no careers for %s", cat)
		}
	}
}

func TestParseQuestionsErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"missing column", "question,type\nA,B\n", "missing column \"category\""},
		{"empty field", "question,category\n,Social\n", "row 2"},
		{"no rows", "question,category\n", "no questions"},
		{"empty", "", "empty csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuestions(strings.NewReader(tt.csv))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseQuestions() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParseQuestionsColumnOrder(t *testing.T) {
	qs, err := ParseQuestions(strings.NewReader("Category,Question\nSocial,\"Help people, often\"\n"))
	if err != nil {
		t.Fatalf("ParseQuestions: %v", err)
	}
	want := []Question{{Text: "Help people, often", Category: "Social"}}
	if !reflect.DeepEqual(qs, want) {
		t.Errorf("got %+v, want %+v", qs, want)
	}
}

func TestScore(t *testing.T) {
	questions := []Question{
		{"a", "Social"}, {"b", "Social"},
		{"c", "Artistic"}, {"d", "Artistic"},
		{"e", "Realistic"},
	}
	answers := []string{"Strongly Agree", "Agree", "Strongly Agree", "???", "Neutral"}

	got := Score(questions, answers)
	want := []CategoryScore{
		{"Social", 4.5},
		{"Realistic", 3},
		{"Artistic", 2.5},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d scores, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Category != want[i].Category || math.Abs(got[i].Score-want[i].Score) > 1e-9 {
			t.Errorf("score[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScoreTiesAndMissingAnswers(t *testing.T) {
	questions := []Question{{"a", "Social"}, {"b", "Artistic"}, {"c", "Conventional"}}
	got := Score(questions, []string{"Agree", "Agree"})

	if got[0].Category != "Artistic" || got[1].Category != "Social" {
		t.Errorf("ties should sort by name: %+v", got)
	}
	if got[2].Category != "Conventional" || got[2].Score != 0 {
		t.Errorf("missing answer should score 0: %+v", got[2])
	}
}

func TestTop(t *testing.T) {
	scores := []CategoryScore{{"A", 5}, {"B", 4}}
	if got := Top(scores, 3); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Top = %v", got)
	}
	if got := Top(nil, 3); len(got) != 0 {
		t.Errorf("Top(nil) = %v", got)
	}
}

func TestProgress(t *testing.T) {
	var p Progress
	p1 := p.Answer("Agree")
	p2 := p1.Answer("Neutral")

	if p.Index != 0 || len(p.Answers) != 0 {
		t.Errorf("original progress mutated: %+v", p)
	}
	if p2.Index != 2 || !reflect.DeepEqual(p2.Answers, []string{"Agree", "Neutral"}) {
		t.Errorf("p2 = %+v", p2)
	}
	if p2.Done(3) || !p2.Done(2) {
		t.Error("Done() mismatch")
	}
}

func TestRatingValue(t *testing.T) {
	if RatingValue("Strongly Agree") != 5 || RatingValue("Strongly Disagree") != 1 || RatingValue("meh") != 0 {
		t.Error("RatingValue mismatch")
	}
}
