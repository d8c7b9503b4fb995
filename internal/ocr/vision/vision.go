// Package vision implements ocr.Engine on top of a vision-capable chat model.
package vision

import (
	"context"
	"strings"

	"github.com/pavelanni/dreamroute/internal/ocr"
)

// Transcriber is the part of llm.Client the engine needs.
type Transcriber interface {
	Transcribe(ctx context.Context, image []byte, mimeType string, languages []string, hint string) ([]string, error)
}

// Engine asks a chat model to transcribe the image into tokens.
type Engine struct {
	client Transcriber
}

// New wraps a transcriber as an OCR engine.
func New(client Transcriber) *Engine {
	return &Engine{client: client}
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "vision" }

// Recognize implements ocr.Engine. The "hint" metadata key is forwarded to the model.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	format := in.Format
	if format == "" {
		format = ocr.ImageFormatPNG
	}
	tokens, err := e.client.Transcribe(ctx, in.Image, string(format), in.Languages, in.Metadata["hint"])
	if err != nil {
		return ocr.Result{}, err
	}
	return ocr.Result{
		InputID:   in.ID,
		Tokens:    tokens,
		PlainText: strings.Join(tokens, " "),
	}, nil
}
