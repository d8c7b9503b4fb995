// Package tesseract implements ocr.Engine with the Tesseract library through gosseract.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/pavelanni/dreamroute/internal/ocr"
)

// Engine recognizes tokens with a fresh gosseract client per image.
type Engine struct {
	clientFactory func() *gosseract.Client
	// MinConfidence drops words below this confidence (0..100). Zero keeps everything.
	MinConfidence float64
}

// New constructs a Tesseract-backed OCR engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "tesseract" }

// Recognize implements ocr.Engine.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	plain := strings.TrimSpace(text)

	level := gosseract.RIL_WORD
	if in.Granularity == ocr.GranularityLine {
		level = gosseract.RIL_TEXTLINE
	}
	tokens := e.tokens(c, level)
	if tokens == nil {
		tokens = fallbackTokens(plain, in.Granularity)
	}

	return ocr.Result{InputID: in.ID, Tokens: tokens, PlainText: plain}, nil
}

func (e *Engine) tokens(c *gosseract.Client, level gosseract.PageIteratorLevel) []string {
	boxes, err := c.GetBoundingBoxes(level)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	out := make([]string, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" || b.Confidence < e.MinConfidence {
			continue
		}
		out = append(out, word)
	}
	return out
}

func fallbackTokens(text string, g ocr.Granularity) []string {
	if g != ocr.GranularityLine {
		return strings.Fields(text)
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
