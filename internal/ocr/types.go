// Package ocr defines the contract with OCR providers and the marksheet
// pipeline built on top of it: decode, binarize, recognize, group into records.
package ocr

import (
	"context"
	"path/filepath"
	"strings"
)

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
	ImageFormatTIFF ImageFormat = "image/tiff"
	ImageFormatBMP  ImageFormat = "image/bmp"
	ImageFormatWEBP ImageFormat = "image/webp"
	ImageFormatGIF  ImageFormat = "image/gif"
)

// FormatFromPath guesses the image format from a file extension.
func FormatFromPath(path string) ImageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return ImageFormatJPEG
	case ".tif", ".tiff":
		return ImageFormatTIFF
	case ".bmp":
		return ImageFormatBMP
	case ".webp":
		return ImageFormatWEBP
	case ".gif":
		return ImageFormatGIF
	default:
		return ImageFormatPNG
	}
}

// Granularity selects how recognized text is split into tokens.
type Granularity string

const (
	GranularityWord Granularity = "word"
	GranularityLine Granularity = "line"
)

// Input is a single image submitted for recognition.
type Input struct {
	// ID is echoed back in the corresponding Result.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image  []byte
	Format ImageFormat
	// Languages are trained-data hints such as "eng" or "hin".
	Languages []string
	// Granularity is a hint; engines that recognize table cells may ignore it.
	Granularity Granularity
	// Metadata passes engine-specific knobs through (e.g. "psm" for Tesseract).
	Metadata map[string]string
}

// Result is the ordered token stream recognized in one image.
type Result struct {
	InputID   string
	Tokens    []string
	PlainText string
}

// Engine is the OCR provider contract: one image in, one ordered token stream out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, input Input) (Result, error)

// Name implements Engine.
func (f EngineFunc) Name() string { return "func" }

// Recognize implements Engine.
func (f EngineFunc) Recognize(ctx context.Context, input Input) (Result, error) {
	return f(ctx, input)
}
