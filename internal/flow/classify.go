package flow

import (
	"fmt"
	"strings"
)

// FallbackCategory is assigned when no rule matches.
const FallbackCategory = "General Studies / Exploration"

// Rule maps a set of keywords to a category.
type Rule struct {
	Category string   `yaml:"category" json:"category"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Classifier assigns a category to a finished traversal by keyword presence.
// Rules are checked in order and the first match wins, so an answer set that
// hits keywords of two categories always gets the earlier one. The match is a
// plain substring test over the lowercased answers; it is a weak heuristic and
// is kept as is.
type Classifier struct {
	Rules    []Rule `yaml:"rules" json:"rules"`
	Fallback string `yaml:"fallback" json:"fallback"`
}

// DefaultClassifier returns the built-in career field rules.
func DefaultClassifier() Classifier {
	return Classifier{
		Rules: []Rule{
			{Category: "Computer Science / AI", Keywords: []string{"ai", "programming", "logic"}},
			{Category: "Business / Management", Keywords: []string{"team", "manage"}},
			{Category: "Design / Arts", Keywords: []string{"creative", "design", "visual"}},
		},
		Fallback: FallbackCategory,
	}
}

// Classify returns the category for the given answers.
func (c Classifier) Classify(answers []string) string {
	text := strings.ToLower(strings.Join(answers, " "))
	for _, r := range c.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Category
			}
		}
	}
	return c.Fallback
}

// ClassifyState classifies the answers recorded in s.
func (c Classifier) ClassifyState(s State) string {
	return c.Classify(s.AnswerValues())
}

func (c Classifier) validate() error {
	var errs []string
	if c.Fallback == "" {
		errs = append(errs, "classifier fallback category is empty")
	}
	for i, r := range c.Rules {
		if r.Category == "" {
			errs = append(errs, fmt.Sprintf("classifier rule %d has no category", i))
		}
		if len(r.Keywords) == 0 {
			errs = append(errs, fmt.Sprintf("classifier rule %q has no keywords", r.Category))
		}
		for _, kw := range r.Keywords {
			if kw == "" || kw != strings.ToLower(kw) {
				errs = append(errs, fmt.Sprintf("classifier rule %q keyword %q must be non-empty lowercase", r.Category, kw))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid classifier:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
