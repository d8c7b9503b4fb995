package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Stdlib decoders.
	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"

	// Scanner output formats.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultThreshold is the gray level above which a pixel becomes white.
const DefaultThreshold = 150

// PreprocessOptions controls binarization before recognition.
type PreprocessOptions struct {
	// Threshold in [0,255]. Pixels strictly brighter become white, the rest black.
	Threshold uint8
	// Invert swaps black and white after thresholding.
	Invert bool
	// Scale enlarges the image before thresholding; values <= 1 keep the size.
	Scale float64
	// Skip disables preprocessing entirely.
	Skip bool
}

// DefaultPreprocessOptions returns the settings used for phone photos of marksheets.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{Threshold: DefaultThreshold}
}

// Preprocess decodes an image, optionally scales it, converts it to grayscale
// and binarizes it. The result is PNG encoded.
func Preprocess(data []byte, opts PreprocessOptions) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	gray := toGray(src, opts.Scale)
	binarize(gray, opts.Threshold, opts.Invert)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(src image.Image, scale float64) *image.Gray {
	b := src.Bounds()
	if scale <= 1 {
		dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
		return dst
	}
	w := int(float64(b.Dx())*scale + 0.5)
	h := int(float64(b.Dy())*scale + 0.5)
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func binarize(img *image.Gray, threshold uint8, invert bool) {
	hi, lo := uint8(255), uint8(0)
	if invert {
		hi, lo = lo, hi
	}
	for i, v := range img.Pix {
		if v > threshold {
			img.Pix[i] = hi
		} else {
			img.Pix[i] = lo
		}
	}
}

