// Package prompts holds the instruction templates sent to vision models.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.txt
var templateFS embed.FS

var hintTagRegex = regexp.MustCompile(`(?i)</?\s*operator-hint\b[^>]*>`)

// Variant selects how the model should split text into tokens.
type Variant string

const (
	// VariantCells asks for one token per table cell.
	VariantCells Variant = "cells"
	// VariantWords asks for one token per word.
	VariantWords Variant = "words"
)

var validVariants = map[Variant]bool{
	VariantCells: true,
	VariantWords: true,
}

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[Variant(v)]
}

// Data holds template data for transcription prompts.
type Data struct {
	Languages string
	Hint      string
}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[Variant]*template.Template
)

func load() error {
	loadOnce.Do(func() {
		templates = make(map[Variant]*template.Template)
		for v := range validVariants {
			name := "templates/transcribe_" + string(v) + ".txt"
			content, err := templateFS.ReadFile(name)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", name, err)
				return
			}
			tmpl, err := template.New(string(v)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", name, err)
				return
			}
			templates[v] = tmpl
		}
	})
	return loadErr
}

// Build renders the transcription prompt for variant.
func Build(variant Variant, languages []string, hint string) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	tmpl, ok := templates[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, Data{
		Languages: strings.Join(languages, ", "),
		Hint:      sanitizeHint(hint),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeHint(hint string) string {
	hint = hintTagRegex.ReplaceAllString(hint, "")
	hint = strings.TrimSpace(hint)
	if utf8.RuneCountInString(hint) > 2000 {
		hint = string([]rune(hint)[:2000])
	}
	return hint
}
