package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pavelanni/dreamroute/internal/marks"
)

// Options configures ExtractMarks.
type Options struct {
	Preprocess  PreprocessOptions
	Languages   []string
	Granularity Granularity
	Metadata    map[string]string
	Parser      marks.Parser
	// DefaultMax is the maximum score used by parsers that cannot read it.
	DefaultMax int
}

// DefaultOptions returns the marksheet defaults.
func DefaultOptions() Options {
	return Options{
		Preprocess:  DefaultPreprocessOptions(),
		Languages:   []string{"eng"},
		Granularity: GranularityWord,
		Parser:      marks.ParserStride,
		DefaultMax:  marks.DefaultMax,
	}
}

// Report is the outcome of reading one marksheet.
type Report struct {
	Source  string         `json:"source"`
	Engine  string         `json:"engine"`
	Tokens  []string       `json:"tokens"`
	Records []marks.Record `json:"records"`
}

// ExtractMarksFile reads an image file and extracts its marks.
func ExtractMarksFile(ctx context.Context, engine Engine, path string, opts Options) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("image not found: %w", err)
	}
	return ExtractMarks(ctx, engine, filepath.Base(path), data, FormatFromPath(path), opts)
}

// ExtractMarks binarizes the image, runs the engine and groups the tokens into records.
func ExtractMarks(ctx context.Context, engine Engine, id string, data []byte, format ImageFormat, opts Options) (Report, error) {
	img := data
	if !opts.Preprocess.Skip {
		var err error
		img, err = Preprocess(data, opts.Preprocess)
		if err != nil {
			return Report{}, fmt.Errorf("preprocess %s: %w", id, err)
		}
		format = ImageFormatPNG
	}

	res, err := engine.Recognize(ctx, Input{
		ID:          id,
		Image:       img,
		Format:      format,
		Languages:   opts.Languages,
		Granularity: opts.Granularity,
		Metadata:    opts.Metadata,
	})
	if err != nil {
		return Report{}, fmt.Errorf("recognize %s with %s: %w", id, engine.Name(), err)
	}

	records := opts.Parser.Run(res.Tokens, opts.DefaultMax)
	slog.Debug("extracted marks",
		"source", id,
		"engine", engine.Name(),
		"tokens", len(res.Tokens),
		"records", len(records),
	)
	return Report{Source: id, Engine: engine.Name(), Tokens: res.Tokens, Records: records}, nil
}
