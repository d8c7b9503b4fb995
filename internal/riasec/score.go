package riasec

import (
	"cmp"
	"slices"
)

// Rating is one point of the answer scale.
type Rating struct {
	Label string
	Value int
	Icon  string
}

// Scale lists the answer options in display order.
var Scale = []Rating{
	{Label: "Strongly Disagree", Value: 1, Icon: "😠"},
	{Label: "Disagree", Value: 2, Icon: "🙁"},
	{Label: "Neutral", Value: 3, Icon: "😐"},
	{Label: "Agree", Value: 4, Icon: "🙂"},
	{Label: "Strongly Agree", Value: 5, Icon: "🤩"},
}

// RatingValue maps an answer label to its score. Unknown labels score 0.
func RatingValue(label string) int {
	for _, r := range Scale {
		if r.Label == label {
			return r.Value
		}
	}
	return 0
}

// CategoryScore is the mean rating for one interest type.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Score averages the ratings per category. answers[i] is the answer to
// questions[i]; missing or unknown answers count as 0. The result is sorted
// by score, highest first, ties broken by category name.
func Score(questions []Question, answers []string) []CategoryScore {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for i, q := range questions {
		v := 0
		if i < len(answers) {
			v = RatingValue(answers[i])
		}
		sums[q.Category] += v
		counts[q.Category]++
	}

	out := make([]CategoryScore, 0, len(counts))
	for cat, n := range counts {
		out = append(out, CategoryScore{Category: cat, Score: float64(sums[cat]) / float64(n)})
	}
	slices.SortFunc(out, func(a, b CategoryScore) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// Top returns the categories of the first n scores.
func Top(scores []CategoryScore, n int) []string {
	n = min(n, len(scores))
	out := make([]string, n)
	for i := range n {
		out[i] = scores[i].Category
	}
	return out
}

// Progress is a participant's position in the profiler.
type Progress struct {
	Index   int      `json:"index"`
	Answers []string `json:"answers"`
}

// Answer records label for the current question and moves to the next one.
func (p Progress) Answer(label string) Progress {
	answers := make([]string, len(p.Answers), len(p.Answers)+1)
	copy(answers, p.Answers)
	return Progress{Index: p.Index + 1, Answers: append(answers, label)}
}

// Done reports whether all total questions were answered.
func (p Progress) Done(total int) bool { return p.Index >= total }
