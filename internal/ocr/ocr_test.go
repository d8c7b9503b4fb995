package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/dreamroute/internal/marks"
)

func grayAt(img image.Image, x, y int) uint8 {
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}

// testImage is 4x1: black, dark gray (150), light gray (151), white.
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{0, 0, 0, 255})
	img.Set(1, 0, color.RGBA{150, 150, 150, 255})
	img.Set(2, 0, color.RGBA{151, 151, 151, 255})
	img.Set(3, 0, color.RGBA{255, 255, 255, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestPreprocessThreshold(t *testing.T) {
	out, err := Preprocess(testImage(t), DefaultPreprocessOptions())
	require.NoError(t, err)

	img := decode(t, out)
	want := []uint8{0, 0, 255, 255}
	for x, w := range want {
		assert.Equal(t, w, grayAt(img, x, 0), "pixel %d", x)
	}
}

func TestPreprocessInvert(t *testing.T) {
	out, err := Preprocess(testImage(t), PreprocessOptions{Threshold: DefaultThreshold, Invert: true})
	require.NoError(t, err)

	img := decode(t, out)
	assert.Equal(t, uint8(255), grayAt(img, 0, 0))
	assert.Equal(t, uint8(0), grayAt(img, 3, 0))
}

func TestPreprocessScale(t *testing.T) {
	out, err := Preprocess(testImage(t), PreprocessOptions{Threshold: DefaultThreshold, Scale: 2})
	require.NoError(t, err)

	img := decode(t, out)
	assert.Equal(t, image.Rect(0, 0, 8, 2), img.Bounds())
	for x := 0; x < 8; x++ {
		v := grayAt(img, x, 0)
		assert.True(t, v == 0 || v == 255, "pixel %d not binary: %d", x, v)
	}
}

func TestPreprocessRejectsGarbage(t *testing.T) {
	_, err := Preprocess([]byte("not an image"), DefaultPreprocessOptions())
	require.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, ImageFormatJPEG, FormatFromPath("scan.JPG"))
	assert.Equal(t, ImageFormatTIFF, FormatFromPath("scan.tiff"))
	assert.Equal(t, ImageFormatPNG, FormatFromPath("scan"))
}

func TestExtractMarks(t *testing.T) {
	var got Input
	engine := EngineFunc(func(_ context.Context, in Input) (Result, error) {
		got = in
		return Result{InputID: in.ID, Tokens: []string{"Math", "100", "85", "Science", "100", "90"}}, nil
	})

	opts := DefaultOptions()
	rep, err := ExtractMarks(context.Background(), engine, "sheet.jpg", testImage(t), ImageFormatJPEG, opts)
	require.NoError(t, err)

	assert.Equal(t, ImageFormatPNG, got.Format, "preprocessed images are re-encoded as PNG")
	assert.Equal(t, []string{"eng"}, got.Languages)
	assert.Equal(t, "func", rep.Engine)
	assert.Equal(t, []marks.Record{
		{Subject: "Math", Max: 100, Obtained: 85},
		{Subject: "Science", Max: 100, Obtained: 90},
	}, rep.Records)
}

func TestExtractMarksSkipPreprocessAndFollowingParser(t *testing.T) {
	raw := []byte("raw bytes the engine understands")
	var got Input
	engine := EngineFunc(func(_ context.Context, in Input) (Result, error) {
		got = in
		return Result{Tokens: []string{"Math", "85"}}, nil
	})

	opts := DefaultOptions()
	opts.Preprocess.Skip = true
	opts.Parser = marks.ParserFollowing
	rep, err := ExtractMarks(context.Background(), engine, "x", raw, ImageFormatTIFF, opts)
	require.NoError(t, err)

	assert.Equal(t, raw, got.Image)
	assert.Equal(t, ImageFormatTIFF, got.Format)
	assert.Equal(t, []marks.Record{{Subject: "Math", Max: 100, Obtained: 85}}, rep.Records)
}

func TestExtractMarksEngineError(t *testing.T) {
	boom := errors.New("engine down")
	engine := EngineFunc(func(context.Context, Input) (Result, error) { return Result{}, boom })

	_, err := ExtractMarks(context.Background(), engine, "x", testImage(t), ImageFormatPNG, DefaultOptions())
	assert.ErrorIs(t, err, boom)
}

func TestExtractMarksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.png")
	require.NoError(t, os.WriteFile(path, testImage(t), 0o644))

	engine := EngineFunc(func(_ context.Context, in Input) (Result, error) {
		return Result{InputID: in.ID}, nil
	})
	rep, err := ExtractMarksFile(context.Background(), engine, path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "sheet.png", rep.Source)
	assert.Empty(t, rep.Records)

	_, err = ExtractMarksFile(context.Background(), engine, filepath.Join(t.TempDir(), "none.png"), DefaultOptions())
	require.Error(t, err)
}
