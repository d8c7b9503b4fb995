// Package views renders the HTML pages as templ components.
package views

//go:generate templ generate

import (
	"bytes"
	"context"
	"embed"
	"log/slog"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"

	"github.com/pavelanni/dreamroute/internal/flow"
	"github.com/pavelanni/dreamroute/internal/i18n"
	"github.com/pavelanni/dreamroute/internal/model"
	"github.com/pavelanni/dreamroute/internal/riasec"
)

//go:embed content/*.md
var contentFS embed.FS

var (
	introMu   sync.Mutex
	introHTML = map[string]string{}
)

// href prefixes path with the deployment base path.
func href(ctx context.Context, path string) templ.SafeURL {
	return templ.URL(model.BasePathFromContext(ctx) + path)
}

func promptFor(prompts map[flow.NodeID]string, id flow.NodeID) string {
	if p, ok := prompts[id]; ok {
		return p
	}
	return string(id)
}

func ratingLabel(ctx context.Context, label string) string {
	return i18n.T(ctx, "Rating"+strings.ReplaceAll(label, " ", ""))
}

func maxRating() int {
	return riasec.Scale[len(riasec.Scale)-1].Value
}

// profilerIntro returns the intro text for lang rendered from markdown,
// falling back to English.
func profilerIntro(lang string) string {
	introMu.Lock()
	defer introMu.Unlock()
	if html, ok := introHTML[lang]; ok {
		return html
	}

	src, err := contentFS.ReadFile("content/profiler_intro." + lang + ".md")
	if err != nil {
		src, err = contentFS.ReadFile("content/profiler_intro.en.md")
		if err != nil {
			slog.Error("profiler intro missing", "error", err)
			return ""
		}
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		slog.Error("render profiler intro", "lang", lang, "error", err)
		return ""
	}
	introHTML[lang] = buf.String()
	return introHTML[lang]
}
